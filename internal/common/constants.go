// Package common contains shared constants and small helpers used across
// services.
package common

import "os"

const (
	// DefaultSlippageBps is applied when a request does not specify a
	// tolerance.
	DefaultSlippageBps = 50

	// MaxSlippageBps rejects obviously broken requests; 100% slippage is a
	// caller bug, not a preference.
	MaxSlippageBps = 9_999
)

func GetEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
