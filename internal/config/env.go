package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AddrSetter определяет интерфейс для установки адреса из строки.
type AddrSetter interface {
	Set(string) error
}

// EnvServer устанавливает адрес коллектора из переменной окружения.
//
// Если переменная envKey присутствует, вызывает addr.Set с её значением.
//
// Возвращает ошибку, если значение некорректно, иначе nil.
func EnvServer(addr AddrSetter, envKey string) error {
	if envVal, ok := os.LookupEnv(envKey); ok {
		if err := addr.Set(envVal); err != nil {
			return fmt.Errorf("invalid %s: %w", envKey, err)
		}
	}
	return nil
}

// EnvDuration возвращает значение переменной окружения как длительность.
//
// Принимает как формат time.ParseDuration ("5s", "1m"), так и целое число секунд.
// Если переменная не задана или пуста, возвращает 0 и nil.
func EnvDuration(key string) (time.Duration, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// EnvString возвращает значение переменной окружения как строку.
//
// Если переменная не задана или пуста, возвращает пустую строку.
func EnvString(key string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return ""
}

// EnvOrString возвращает значение переменной окружения или fallback, если она пуста.
func EnvOrString(key, fallback string) string {
	if v := EnvString(key); v != "" {
		return v
	}
	return fallback
}
