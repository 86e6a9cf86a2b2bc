// Package clock абстрагирует работу со временем, чтобы харвестер и батчи
// можно было тестировать детерминированно.
package clock

import "time"

// Clock — источник времени.
//
// В продакшене используется Real(), в тестах — Fake() с ручным управлением временем.
type Clock interface {
	// Now возвращает текущее время.
	Now() time.Time
	// After возвращает канал, в который придёт текущее время через d.
	// Если d <= 0, значение приходит сразу.
	After(d time.Duration) <-chan time.Time
}

// Real возвращает Clock на основе пакета time.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// UnixMilli возвращает время c в миллисекундах от эпохи.
func UnixMilli(c Clock) int64 {
	return c.Now().UnixMilli()
}
