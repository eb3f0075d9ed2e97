package riddle

import (
	"errors"
	"strconv"
	"strings"

	"github.com/yalcindeniztr/tarihseli/internal/domain"
)

var ErrUnknownLogic = errors.New("unknown unlock logic")

// DigitsSum возвращает сумму цифр года: 1453 -> 13
func DigitsSum(year int) int {
	if year < 0 {
		year = -year
	}
	sum := 0
	for year > 0 {
		sum += year % 10
		year /= 10
	}
	return sum
}

// EvalUnlockLogic вычисляет ожидаемый код разблокировки по заранее
// известным шаблонам формул из контента.
func EvalUnlockLogic(year int, logic string) (int, error) {
	sum := DigitsSum(year)

	switch strings.TrimSpace(logic) {
	case "(rakam_toplamı * 2)":
		return sum * 2, nil
	case "(rakam_toplamı * 3)":
		return sum * 3, nil
	case "(rakam_toplamı * 4)":
		return sum * 4, nil
	case "(rakam_toplamı + 5)":
		return sum + 5, nil
	case "(rakam_toplamı - 5)":
		return sum - 5, nil
	case "":
		return sum, nil
	}
	return 0, ErrUnknownLogic
}

// ValidateAnswer checks the history question part of a node.
func ValidateAnswer(node *domain.Node, input string) bool {
	input = strings.TrimSpace(input)

	switch node.QuestionType {
	case domain.QuestionText, domain.QuestionMultipleChoice:
		return strings.EqualFold(input, node.CorrectAnswer)
	default:
		// YEAR is the historical default when the type is unset
		year, err := strconv.Atoi(input)
		if err != nil {
			return false
		}
		if node.CorrectYear != 0 {
			return year == node.CorrectYear
		}
		want, err := strconv.Atoi(node.CorrectAnswer)
		if err != nil {
			return false
		}
		return year == want
	}
}

// ValidateUnlock checks the unlock part of a node (the code that opens the key).
func ValidateUnlock(node *domain.Node, input string) bool {
	input = strings.TrimSpace(input)

	switch node.UnlockType {
	case domain.UnlockText, domain.UnlockMultipleChoice:
		return strings.EqualFold(input, node.UnlockAnswer)
	default:
		// MATH: формула над цифрами года
		got, err := strconv.Atoi(input)
		if err != nil {
			return false
		}
		want, err := EvalUnlockLogic(node.CorrectYear, node.UnlockLogic)
		if err != nil {
			return false
		}
		return got == want
	}
}
