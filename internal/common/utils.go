package common

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// PairHash identifies a prediction/ground truth pair by content. Parts are
// length-prefixed so ("ab", "c") and ("a", "bc") hash differently.
func PairHash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		_, _ = io.WriteString(h, p)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NewLogger builds the JSON logger every command writes to stderr.
// Quiet mode only lets errors through.
func NewLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
