package inference

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingInvoker is a decorator that logs every invocation.
type LoggingInvoker struct {
	inner  Invoker
	logger *zap.Logger
}

// WithLogging wraps an Invoker with zap logging.
func WithLogging(inv Invoker, logger *zap.Logger) Invoker {
	if logger == nil {
		return inv
	}
	return &LoggingInvoker{inner: inv, logger: logger}
}

func (l *LoggingInvoker) InvokeModel(ctx context.Context, req *InvokeRequest) ([]byte, error) {
	start := time.Now()
	out, err := l.inner.InvokeModel(ctx, req)
	fields := []zap.Field{
		zap.String("model", modelFor(req, l.inner.ModelID())),
		zap.Int("request_bytes", len(req.Body)),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		l.logger.Error("model invocation failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	l.logger.Debug("model invocation", append(fields, zap.Int("response_bytes", len(out)))...)
	return out, nil
}

func (l *LoggingInvoker) ModelID() string {
	return l.inner.ModelID()
}
