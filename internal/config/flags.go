package config

import (
	"strconv"
	"strings"
)

// NetAddress представляет сетевой адрес коллектора.
//
// Используется для конфигурации через флаги командной строки или переменные окружения.
// Реализует интерфейсы flag.Value и AddrSetter.
//
// Поля:
//   - Scheme: схема "http" или "https" (по умолчанию "http")
//   - Host: имя хоста (по умолчанию "localhost")
//   - Port: номер порта (8080 для http, 443 для https)
type NetAddress struct {
	Scheme string // Схема
	Host   string // Имя хоста
	Port   int    // Порт
}

// String возвращает адрес в формате host:port.
func (a NetAddress) String() string {
	return a.Host + ":" + strconv.Itoa(a.Port)
}

// URL возвращает базовый URL вида scheme://host:port.
func (a NetAddress) URL() string {
	scheme := a.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + a.String()
}

// Set разбирает строку вида [scheme://]host[:port].
//
// Если порт не указан, используется 443 для https и 8080 в остальных случаях.
// Возвращает ошибку, если порт не удаётся преобразовать в число.
func (a *NetAddress) Set(s string) error {
	a.Scheme = "http"
	if scheme, rest, ok := strings.Cut(s, "://"); ok {
		a.Scheme = strings.ToLower(scheme)
		s = rest
	}

	host, port, hasPort := strings.Cut(s, ":")
	a.Host = host
	if !hasPort {
		a.Port = 8080
		if a.Scheme == "https" {
			a.Port = 443
		}
		return nil
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return err
	}
	a.Port = p
	return nil
}
