package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type RunLogger struct {
	file       *os.File
	logger     *log.Logger
	multiWrite io.Writer
}

// NewRunLogger creates a logger that writes one file per discovery run,
// mirrored to stdout.
func NewRunLogger(siteName string) (*RunLogger, error) {
	// Sanitize site name for file system
	sanitizedSite := strings.ReplaceAll(strings.ToLower(siteName), " ", "_")
	sanitizedSite = strings.ReplaceAll(sanitizedSite, "/", "_")
	sanitizedSite = strings.ReplaceAll(sanitizedSite, ":", "")

	logsDir := "logs"
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	siteDir := filepath.Join(logsDir, sanitizedSite)
	if err := os.MkdirAll(siteDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create site directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(siteDir, fmt.Sprintf("discovery_%s_%s.log", sanitizedSite, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	multiWrite := io.MultiWriter(os.Stdout, file)
	logger := log.New(multiWrite, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &RunLogger{
		file:       file,
		logger:     logger,
		multiWrite: multiWrite,
	}, nil
}

func (rl *RunLogger) LogInfo(format string, v ...interface{}) {
	rl.log("INFO", format, v...)
}

func (rl *RunLogger) LogError(format string, v ...interface{}) {
	rl.log("ERROR", format, v...)
}

func (rl *RunLogger) LogDebug(format string, v ...interface{}) {
	rl.log("DEBUG", format, v...)
}

func (rl *RunLogger) log(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	rl.logger.Printf("[%s] %s", level, message)
}

func (rl *RunLogger) Close() error {
	return rl.file.Close()
}
