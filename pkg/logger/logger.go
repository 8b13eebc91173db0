package logger

import "go.uber.org/zap"

// New builds the production zap logger used by every binary.
func New() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}
