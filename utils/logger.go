package utils

import "go.uber.org/zap"

// NewLogger membuat zap.Logger sesuai environment (production / development).
func NewLogger(env string) *zap.Logger {
	if env == "production" {
		logger, err := zap.NewProduction()
		if err == nil {
			return logger
		}
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
