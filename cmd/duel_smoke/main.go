// duel_smoke гоняет живой сервер через публичный API: два игрока, вызов,
// принятие, и оба сокета должны получить duel_started.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func main() {
	base := os.Getenv("APP_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	category := os.Getenv("SMOKE_CATEGORY")
	if category == "" {
		category = "cat-ottoman"
	}

	tokenA := login(base, "smokeA")
	tokenB := login(base, "smokeB")

	wsA := dial(base, tokenA)
	defer wsA.Close()
	wsB := dial(base, tokenB)
	defer wsB.Close()

	waitFor(wsA, "ready")
	waitFor(wsB, "ready")

	// A вызывает B
	var invResp struct {
		Invite struct {
			ID string `json:"id"`
		} `json:"invite"`
	}
	post(base, "/api/v1/duel/invite", tokenA, map[string]any{"username": "smokeB"}, &invResp)
	log.Printf("invite created id=%s", invResp.Invite.ID)

	waitFor(wsB, "duel_invite")
	log.Println("recipient notified over ws")

	// B принимает
	var acceptResp struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	post(base, "/api/v1/duel/invites/"+invResp.Invite.ID+"/accept", tokenB,
		map[string]any{"category_id": category, "wager": 100}, &acceptResp)
	log.Printf("session created id=%s", acceptResp.Session.ID)

	waitFor(wsA, "duel_started")
	waitFor(wsB, "duel_started")

	log.Println("SMOKE OK")
}

func login(base, username string) string {
	var resp struct {
		Token string `json:"token"`
	}
	post(base, "/api/v1/auth", "", map[string]any{"username": username}, &resp)
	if resp.Token == "" {
		log.Fatalf("login %s: empty token", username)
	}
	return resp.Token
}

func post(base, path, token string, body any, out any) {
	raw, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, base+path, bytes.NewReader(raw))
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		log.Fatalf("POST %s: status %d", path, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("POST %s: decode: %v", path, err)
		}
	}
}

func dial(base, token string) *websocket.Conn {
	wsURL := strings.Replace(base, "http", "ws", 1) + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("ws dial: %v", err)
	}
	return conn
}

// waitFor читает сокет, пока не встретит нужный тип сообщения
func waitFor(conn *websocket.Conn, msgType string) {
	deadline := time.Now().Add(10 * time.Second)
	_ = conn.SetReadDeadline(deadline)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("waiting for %q: %v", msgType, err)
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		if env.Type == msgType {
			fmt.Printf("got %s\n", msgType)
			return
		}
	}
}
