package pkg

import (
	"log"
	"os"

	"go.uber.org/zap"
)

// panic - детектит.
func FuncWithPanic() {
	panic("ошибка") // want "use of builtin panic outside main.main"
}

// log.Fatal - детектит.
func FuncWithFatal() {
	log.Fatalf("вне %s", "main.main") // want "call to log.Fatalf outside main.main"
}

// os.Exit - детектит.
func FuncWithExit() {
	os.Exit(1) // want "call to os.Exit outside main.main"
}

// Fatal и Panic логгера zap - детектит.
func FuncWithZap(logger *zap.Logger) {
	logger.Fatal("упали") // want "call to zap Fatal outside main.main"
	logger.Sugar().Panicf("упали: %d", 1) // want "call to zap Panicf outside main.main"
}

// DPanic и обычные уровни - всё ГУДчи.
func FuncAllowed(logger *zap.Logger) {
	log.Println("ОК")
	logger.DPanic("только в development")
	logger.Error("ОК")
}

var initHook = func() {
	os.Exit(2) // want "call to os.Exit outside main.main"
}

type runner struct{}

// Метод main - не точка входа.
func (runner) main() {
	panic("метод") // want "use of builtin panic outside main.main"
}
