// Package version хранит сведения о сборке, заданные через -ldflags.
package version

import (
	"fmt"
	"io"
)

var (
	// buildVersion — версия сборки приложения.
	buildVersion string
	// buildDate — дата сборки приложения.
	buildDate string
	// buildCommit — хеш коммита сборки.
	buildCommit string
)

// SDKVersion — версия SDK, попадающая в User-Agent.
const SDKVersion = "0.1.0"

const userAgentPrefix = "RoGogDBD-Go-TelemetrySDK/"

// UserAgent возвращает базовое значение заголовка User-Agent.
func UserAgent() string {
	return userAgentPrefix + SDKVersion
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// PrintBuildInfo выводит информацию о сборке приложения в w.
func PrintBuildInfo(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", orNA(buildVersion))
	fmt.Fprintf(w, "Build date: %s\n", orNA(buildDate))
	fmt.Fprintf(w, "Build commit: %s\n", orNA(buildCommit))
}
