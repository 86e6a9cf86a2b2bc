// Package zap - минимальная заглушка для testdata анализатора.
package zap

type Logger struct{}

type SugaredLogger struct{}

func NewNop() *Logger { return &Logger{} }

func (l *Logger) Sugar() *SugaredLogger { return &SugaredLogger{} }

func (l *Logger) Error(msg string)  {}
func (l *Logger) DPanic(msg string) {}
func (l *Logger) Fatal(msg string)  {}
func (l *Logger) Panic(msg string)  {}

func (s *SugaredLogger) Fatalf(tmpl string, args ...interface{}) {}
func (s *SugaredLogger) Panicf(tmpl string, args ...interface{}) {}
