package js

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// registerConsole routes console.log, warn and error to the logger.
func registerConsole(vm *goja.Runtime, log *zap.Logger) {
	console := vm.NewObject()
	level := func(l zapcore.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			if ce := log.Check(l, formatArgs(call.Arguments)); ce != nil {
				ce.Write()
			}
			return goja.Undefined()
		}
	}
	console.Set("log", level(zapcore.InfoLevel))
	console.Set("info", level(zapcore.InfoLevel))
	console.Set("debug", level(zapcore.DebugLevel))
	console.Set("warn", level(zapcore.WarnLevel))
	console.Set("error", level(zapcore.ErrorLevel))
	vm.Set("console", console)
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
