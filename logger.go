package security

import "go.uber.org/zap"

// ZapLogger adapts a zap sugared logger to Logger.
type ZapLogger struct {
	logger *zap.SugaredLogger
}

// NewZapLogger wraps logger. A nil logger yields a no-op logger.
func NewZapLogger(logger *zap.SugaredLogger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ZapLogger{logger: logger}
}

func (z *ZapLogger) Debug(format string, args ...any) { z.logger.Debugf(format, args...) }
func (z *ZapLogger) Info(format string, args ...any)  { z.logger.Infof(format, args...) }
func (z *ZapLogger) Warn(format string, args ...any)  { z.logger.Warnf(format, args...) }
func (z *ZapLogger) Error(format string, args ...any) { z.logger.Errorf(format, args...) }

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}
