package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrClosed возвращается при отправке через закрытый клиент.
var ErrClosed = errors.New("client is closed")

// TransportError — сетевая ошибка отправки: соединение, таймаут, отмена контекста.
//
// Харвестер считает такие ошибки ожидаемыми и продолжает работу.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retriable сообщает, что операцию можно повторить.
func (e *TransportError) Retriable() bool {
	return true
}

// EncodeError — батч не удалось сериализовать в JSON.
//
// Это ошибка данных, а не транспорта: повтор не поможет, запрос не отправлялся.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode payload: %v", e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// HTTPError — ответ коллектора с кодом вне диапазона 2xx.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d %s", e.Status, http.StatusText(e.Status))
}

// Retriable возвращает true для 429 и 5xx.
func (e *HTTPError) Retriable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// Response — результат отправки батча.
type Response struct {
	Status    int
	RequestID string
	Body      []byte
}

// OK возвращает true для кодов 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Err возвращает *HTTPError для неуспешного ответа и nil для успешного.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &HTTPError{Status: r.Status}
}
