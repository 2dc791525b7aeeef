package logger

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"meridian/kudos_credit_ledger/configs"
	"meridian/kudos_credit_ledger/internal/app/middleware"
)

var (
	log         *zap.Logger
	serviceName string
)

func init() {
	serviceName = configs.GetEnv("SERVICE_NAME", "kudosledger")

	var logLevel zapcore.Level
	switch strings.ToLower(configs.GetEnv("LOG_LEVEL", "INFO")) {
	case "debug":
		logLevel = zap.DebugLevel
	case "warn":
		logLevel = zap.WarnLevel
	case "error":
		logLevel = zap.ErrorLevel
	default:
		logLevel = zap.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(logLevel)
	config.Encoding = "json"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "log_level"
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.TimeKey = "timestamp"
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.StacktraceKey = ""
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	log, _ = config.Build(zap.AddCallerSkip(1))
}

func Info(args ...interface{}) {
	logMessage(zap.InfoLevel, args...)
}

func Debug(args ...interface{}) {
	logMessage(zap.DebugLevel, args...)
}

func Error(args ...interface{}) {
	logMessage(zap.ErrorLevel, args...)
}

func Warn(args ...interface{}) {
	logMessage(zap.WarnLevel, args...)
}

// logMessage accepts an optional leading context.Context followed by a format
// string and its arguments.
func logMessage(level zapcore.Level, args ...interface{}) {
	var msg string
	var fields []zapcore.Field

	if len(args) > 0 {
		if ctx, ok := args[0].(context.Context); ok {
			fields = essentialFields(ctx)
			msg = formatMessage(args[1:]...)
		} else {
			msg = formatMessage(args...)
		}
	}

	switch level {
	case zap.DebugLevel:
		log.Debug(msg, fields...)
	case zap.WarnLevel:
		log.Warn(msg, fields...)
	case zap.ErrorLevel:
		log.Error(msg, fields...)
	default:
		log.Info(msg, fields...)
	}
}

func formatMessage(args ...interface{}) string {
	if len(args) == 0 {
		return ""
	}
	msg, ok := args[0].(string)
	if !ok {
		msg = fmt.Sprintf("%v", args[0])
	}
	if len(args) > 1 {
		msg = fmt.Sprintf(msg, args[1:]...)
	}
	return msg
}

func essentialFields(ctx context.Context) []zapcore.Field {
	var fields []zapcore.Field

	if ctx == nil {
		return fields
	}
	if details, ok := ctx.Value(middleware.LogDetailsKey).(middleware.RequestDetails); ok {
		fields = append(fields, zap.String("request_id", details.RequestID))
	}
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
	}
	fields = append(fields, zap.String("service_name", serviceName))

	return fields
}
