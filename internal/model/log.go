package models

import "time"

// Log — запись лога для Log API.
//
// Поля:
//   - Stamp: время записи (мс) и атрибуты (log.level, logger.name и т.д.)
//   - Message: текст сообщения
type Log struct {
	Stamp
	Message string `json:"message"`
}

// NewLog создаёт запись лога с сообщением message.
// Если timestampMs равен 0, берётся текущее время.
// Возвращает запись с копией attrs.
func NewLog(message string, timestampMs int64, attrs Attributes) Log {
	if timestampMs == 0 {
		timestampMs = time.Now().UnixMilli()
	}
	return Log{
		Stamp: Stamp{
			Timestamp:  timestampMs,
			Attributes: attrs.Clone(),
		},
		Message: message,
	}
}
