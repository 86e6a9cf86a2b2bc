package config

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashHeader — заголовок с подписью тела запроса.
const HashHeader = "HashSHA256"

// ComputeHash возвращает hex-кодированный HMAC-SHA256 от data на ключе key.
func ComputeHash(data []byte, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHash сравнивает подпись received с ожидаемой за постоянное время.
// Пустой key отключает проверку.
func VerifyHash(data []byte, key, received string) bool {
	if key == "" {
		return true
	}
	if received == "" {
		return false
	}
	return hmac.Equal([]byte(ComputeHash(data, key)), []byte(received))
}
