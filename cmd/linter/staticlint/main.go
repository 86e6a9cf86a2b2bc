// Команда staticlint запускает анализатор noexit как самостоятельный линтер:
//
//	staticlint ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/RoGogDBD/telemetry-sdk/cmd/linter"
)

func main() {
	singlechecker.Main(linter.Analyzer)
}
