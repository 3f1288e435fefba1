// Package logger provides the engine's structured logging and the
// same colored section/banner presentation helpers the original
// console logger carried, now backed by zap (SPEC_FULL.md §1.1)
// instead of log.Println.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes, used by the cosmetic Section/Banner helpers and to
// highlight the Success/InfoCyan message text; the level of each
// structured log line is colored by zap's own level encoder.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[37m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Log levels, kept for callers that configured a level under the old
// API.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSuccess
)

var atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

var sugar = buildSugar()

func buildSugar() *zap.SugaredLogger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stdout), atomicLevel)
	return zap.New(core, zap.AddCallerSkip(1)).Sugar()
}

// SetLevel sets the minimum log level, accepting the Level* constants
// above. LevelSuccess maps to info, matching Success's own level.
func SetLevel(level int) {
	switch level {
	case LevelDebug:
		atomicLevel.SetLevel(zap.DebugLevel)
	case LevelWarn:
		atomicLevel.SetLevel(zap.WarnLevel)
	case LevelError:
		atomicLevel.SetLevel(zap.ErrorLevel)
	default:
		atomicLevel.SetLevel(zap.InfoLevel)
	}
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) { sugar.Debugf(format, args...) }

// Info logs an informational message.
func Info(format string, args ...interface{}) { sugar.Infof(format, args...) }

// Warn logs a warning message.
func Warn(format string, args ...interface{}) { sugar.Warnf(format, args...) }

// Error logs an error message.
func Error(format string, args ...interface{}) { sugar.Errorf(format, args...) }

// Success logs a notable positive event at info level.
func Success(format string, args ...interface{}) {
	sugar.Infof(ColorGreen+format+ColorReset, args...)
}

// Fatal logs a fatal error and exits the process.
func Fatal(format string, args ...interface{}) {
	sugar.Fatalf(format, args...)
}

// InfoCyan logs an info message highlighted for special events, such
// as a newly established session.
func InfoCyan(format string, args ...interface{}) {
	sugar.Infof(ColorCyan+format+ColorReset, args...)
}

// Sync flushes any buffered log entries; callers should defer it once
// at process startup.
func Sync() {
	_ = sugar.Sync()
}

// Section prints a section header directly to stdout. Purely
// cosmetic, so it bypasses zap rather than fighting its line format.
func Section(title string) {
	border := "═══════════════════════════════════════════════════════════"
	fmt.Printf("\n%s╔%s╗%s\n", ColorCyan, border, ColorReset)
	fmt.Printf("%s║%s %-57s %s║%s\n", ColorCyan, ColorReset, title, ColorCyan, ColorReset)
	fmt.Printf("%s╚%s╝%s\n\n", ColorCyan, border, ColorReset)
}

// Banner prints the application banner.
func Banner(title, version string) {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   ███████╗ █████╗       ███╗   ███╗██████╗               ║
║   ██╔════╝██╔══██╗      ████╗ ████║██╔══██╗              ║
║   ███████╗███████║█████╗██╔████╔██║██████╔╝              ║
║   ╚════██║██╔══██║╚════╝██║╚██╔╝██║██╔═══╝               ║
║   ███████║██║  ██║      ██║ ╚═╝ ██║██║                   ║
║   ╚══════╝╚═╝  ╚═╝      ╚═╝     ╚═╝╚═╝                   ║
║                                                           ║
║              %s%-37s%s║
║                    %sVersion %-7s%s                      ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, ColorCyan, title, ColorReset, ColorGreen, version, ColorReset)
}
