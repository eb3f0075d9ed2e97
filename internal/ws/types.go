package ws

// MsgReady подтверждает клиенту готовность сокета. Остальные типы
// сообщений определяет отправитель (service.Msg*), хаб доставляет
// конверт не заглядывая внутрь.
const MsgReady = "ready"
