// Package telemetrylog пересылает записи zap в batch.LogBatch.
package telemetrylog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RoGogDBD/telemetry-sdk/internal/batch"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
)

// Ключи атрибутов записи лога.
const (
	AttrLevel        = "log.level"
	AttrLoggerName   = "logger.name"
	AttrFileName     = "file.name"
	AttrLineNumber   = "line.number"
	AttrFunctionName = "function.name"
	AttrErrorMessage = "error.message"
	AttrErrorClass   = "error.class"
	AttrErrorStack   = "error.stack"
)

// Core — zapcore.Core, превращающий каждую запись в models.Log.
type Core struct {
	zapcore.LevelEnabler
	batch  *batch.LogBatch
	fields []zapcore.Field
}

// NewCore создаёт Core, пишущий в b записи уровня enab и выше.
func NewCore(b *batch.LogBatch, enab zapcore.LevelEnabler) *Core {
	return &Core{LevelEnabler: enab, batch: b}
}

// Tee возвращает логгер, который пишет и в logger, и в b.
func Tee(logger *zap.Logger, b *batch.LogBatch, enab zapcore.LevelEnabler) *zap.Logger {
	return logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, NewCore(b, enab))
	}))
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(clone.fields[:len(clone.fields):len(clone.fields)], fields...)
	return &clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	attrs := make(models.Attributes, len(c.fields)+len(fields)+5)

	for _, group := range [][]zapcore.Field{c.fields, fields} {
		for _, f := range group {
			if f.Type == zapcore.ErrorType {
				addError(attrs, f)
				continue
			}
			f.AddTo(enc)
		}
	}
	for k, v := range enc.Fields {
		attrs[k] = v
	}

	attrs[AttrLevel] = ent.Level.String()
	if ent.LoggerName != "" {
		attrs[AttrLoggerName] = ent.LoggerName
	}
	if ent.Caller.Defined {
		attrs[AttrFileName] = ent.Caller.File
		attrs[AttrLineNumber] = ent.Caller.Line
		if ent.Caller.Function != "" {
			attrs[AttrFunctionName] = ent.Caller.Function
		}
	}
	if ent.Stack != "" {
		attrs[AttrErrorStack] = ent.Stack
	}

	c.batch.Record(models.NewLog(ent.Message, ent.Time.UnixMilli(), attrs))
	return nil
}

func (c *Core) Sync() error {
	return nil
}

func addError(attrs models.Attributes, f zapcore.Field) {
	err, ok := f.Interface.(error)
	if !ok || err == nil {
		return
	}
	// Обычный zap.Error имеет ключ "error", именованные ошибки сохраняют префикс.
	prefix := "error"
	if f.Key != "error" {
		prefix = f.Key + ".error"
	}
	attrs[prefix+".message"] = err.Error()
	attrs[prefix+".class"] = fmt.Sprintf("%T", err)
}
