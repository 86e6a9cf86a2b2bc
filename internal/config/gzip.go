package config

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// GzipCompress сжимает data в gzip и дописывает результат в buf.
func GzipCompress(buf *bytes.Buffer, data []byte) error {
	gz := gzip.NewWriter(buf)
	if _, err := gz.Write(data); err != nil {
		return err
	}
	return gz.Close()
}

// GzipDecompress читает gzip-поток из r и возвращает распакованные данные.
func GzipDecompress(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, gz); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ErrBodyTooLarge возвращается, если распакованные данные превышают лимит.
var ErrBodyTooLarge = errors.New("decompressed body too large")

// GzipDecompressLimit как GzipDecompress, но читает не больше limit байт
// распакованных данных. При превышении возвращает ErrBodyTooLarge.
func GzipDecompressLimit(r io.Reader, limit int64) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(gz, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, ErrBodyTooLarge
	}
	return buf.Bytes(), nil
}

// GzipRequestMiddleware возвращает middleware, распаковывающее тело запроса
// с Content-Encoding: gzip.
//
// Распаковывается не больше limit байт: больший результат даёт 413, битый gzip даёт 400.
// После распаковки заголовок Content-Encoding удаляется, а тело заменяется
// распакованными данными.
func GzipRequestMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			data, err := GzipDecompressLimit(r.Body, limit)
			_ = r.Body.Close()
			switch {
			case errors.Is(err, ErrBodyTooLarge):
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			case err != nil:
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(data))
			r.ContentLength = int64(len(data))
			r.Header.Del("Content-Encoding")
			next.ServeHTTP(w, r)
		})
	}
}
