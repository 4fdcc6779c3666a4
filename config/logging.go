package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates the application logger writing to a file under the
// config directory. Stdout belongs to the terminal UI, so logs never go
// there. The returned closer flushes the log file on shutdown.
func NewLogger(debug bool) (zerolog.Logger, io.Closer, error) {
	dir, err := Dir()
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	file, err := os.OpenFile(filepath.Join(dir, "optifolio.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(file).
		Level(level).
		With().
		Timestamp().
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
	return logger, file, nil
}

// Dir returns the application config directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".config", "optifolio")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}
