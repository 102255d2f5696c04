// Package hkcontext carries a structured logger on a context.Context, the
// way request-scoped fields (hash, store name, backend index) accumulate as
// a call descends from MixedStore into a child Store into the Hkey
// resolver, without every function threading a *logrus.Entry parameter.
package hkcontext

import (
	"context"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger   *logrus.Entry = logrus.StandardLogger().WithField("go.version", runtime.Version())
	defaultLoggerMu sync.RWMutex
)

// Logger is the leveled-logging surface hkvault code depends on.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)

	Info(args ...any)
	Infof(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	WithError(err error) *logrus.Entry
}

type loggerKey struct{}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithFields returns a new context carrying the current logger (or the
// default one) annotated with fields, e.g. the hash a Get/PutEncrypted call
// is about to touch, or the backend name a MixedStore is trying.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	lfields := make(logrus.Fields, len(fields))
	for k, v := range fields {
		lfields[k] = v
	}
	return WithLogger(ctx, getLogrusLogger(ctx).WithFields(lfields))
}

// GetLogger returns the logger carried on ctx, or the package default.
// Only a *logrus.Entry attached with WithLogger is returned; a logger of
// any other type on ctx is ignored and the default is returned instead.
func GetLogger(ctx context.Context) Logger {
	return getLogrusLogger(ctx)
}

// SetDefaultLogger replaces the base logger new contexts fall back to.
// Only a *logrus.Entry is accepted; a logger of any other type leaves the
// default unchanged.
func SetDefaultLogger(logger Logger) {
	entry, ok := logger.(*logrus.Entry)
	if !ok {
		return
	}
	defaultLoggerMu.Lock()
	defaultLogger = entry
	defaultLoggerMu.Unlock()
}

func getLogrusLogger(ctx context.Context) *logrus.Entry {
	if loggerInterface := ctx.Value(loggerKey{}); loggerInterface != nil {
		if lgr, ok := loggerInterface.(*logrus.Entry); ok {
			return lgr
		}
	}

	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}
