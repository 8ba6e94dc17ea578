package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs HTTP request information
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogPage logs one catalog page fetch
func LogPage(l Logger, page int, items int, cursor string, done bool) {
	l.InfoWithFields("catalog page fetched", map[string]interface{}{
		"page":   page,
		"items":  items,
		"cursor": cursor,
		"done":   done,
	})
}

// LogPurchase logs the outcome of one acquisition attempt
func LogPurchase(l Logger, itemID, productID uint64, attempts int, err error) {
	fields := map[string]interface{}{
		"item_id":    itemID,
		"product_id": productID,
		"attempts":   attempts,
	}
	if err != nil {
		l.WithError(err).ErrorWithFields("purchase attempt failed", fields)
		return
	}
	l.InfoWithFields("item purchased", fields)
}

// LogRateLimit logs a rate-limit cool-down
func LogRateLimit(l Logger, productID uint64, cooldown time.Duration) {
	l.WarnWithFields("rate limit reached, cooling down", map[string]interface{}{
		"product_id": productID,
		"cooldown":   cooldown,
		"action":     "rate_limited",
	})
}

// LogSkip logs an item that will not be purchased
func LogSkip(l Logger, itemID uint64, reason string) {
	l.DebugWithFields("item skipped", map[string]interface{}{
		"item_id": itemID,
		"reason":  reason,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
