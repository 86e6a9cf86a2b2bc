package models

// AuditEvent представляет событие аудита приёма батча коллектором.
//
// Поля:
//   - Timestamp: время приёма в миллисекундах
//   - DataType: тип данных батча (metrics, spans, logs, events)
//   - Items: число записей в батче
//   - RequestID: x-request-id запроса, если был передан
//   - IPAddress: адрес отправителя
type AuditEvent struct {
	Timestamp int64  `json:"ts"`
	DataType  string `json:"data_type"`
	Items     int    `json:"items"`
	RequestID string `json:"request_id,omitempty"`
	IPAddress string `json:"ip_address"`
}

// AuditObserver интерфейс наблюдателя для аудита
type AuditObserver interface {
	OnAuditEvent(event AuditEvent) error
}

// AuditSubject интерфейс субъекта, генерирующего события аудита
type AuditSubject interface {
	Attach(observer AuditObserver)
	Detach(observer AuditObserver)
	Notify(event AuditEvent)
}
