// Package logging writes per-run log files and tails them back.
package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const logExt = ".log"

// Options configures the structured logger.
type Options struct {
	Level  string
	Format string
	Prefix string
}

// RunLogger manages the log file of one program run.
type RunLogger struct {
	Dir     string
	RunID   string
	LogPath string
	file    *os.File
	logger  *log.Logger
}

// NewRunLogger creates the project log directory and a log file for this run.
func NewRunLogger(baseDir, workDir string, opts Options) (*RunLogger, error) {
	logDir, err := FindLogDir(baseDir, workDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := runID()
	logPath := filepath.Join(logDir, id+logExt)
	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &RunLogger{
		Dir:     logDir,
		RunID:   id,
		LogPath: logPath,
		file:    file,
		logger:  New(file, opts),
	}, nil
}

// New returns a structured logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          opts.Prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Logger returns the structured logger bound to the run's log file. A nil
// RunLogger yields a discarding logger.
func (r *RunLogger) Logger() *log.Logger {
	if r == nil || r.logger == nil {
		return Discard()
	}
	return r.logger
}

// Close closes the log file.
func (r *RunLogger) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// ParseLevel parses a string log level to a charmbracelet/log Level.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// FindLogDir returns the log directory for a given work directory.
func FindLogDir(baseDir, workDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}

	resolvedWorkDir := workDir
	if resolvedWorkDir == "" {
		resolvedWorkDir = "."
	}
	if abs, err := filepath.Abs(resolvedWorkDir); err == nil {
		resolvedWorkDir = abs
	}

	baseDir = resolveBaseDir(baseDir, resolvedWorkDir)
	return filepath.Join(baseDir, projectSlug(resolvedWorkDir)), nil
}

func resolveBaseDir(baseDir, workDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	return filepath.Clean(filepath.Join(workDir, baseDir))
}

func projectSlug(projectRoot string) string {
	return fmt.Sprintf("%s-%s", slugify(filepath.Base(projectRoot)), hashPath(projectRoot))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "project"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "project"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// FindLatestLog finds the most recently modified log file in a directory.
// It returns "" when the directory is missing or holds no logs.
func FindLatestLog(logDir string) (string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read log dir: %w", err)
	}

	var latest string
	var latestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), logExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latest = filepath.Join(logDir, entry.Name())
		}
	}
	return latest, nil
}

// TailLog copies the last n lines of a log file to w (all of it when n <= 0).
// With follow set it keeps copying new data until stop is closed.
func TailLog(w io.Writer, path string, n int, follow bool, stop <-chan struct{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read log file: %w", err)
	}
	if _, err := io.WriteString(w, lastLines(string(data), n)); err != nil {
		return err
	}
	if !follow {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()
	if _, err := file.Seek(int64(len(data)), io.SeekStart); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if _, err := io.Copy(w, file); err != nil {
			return err
		}
		select {
		case <-stop:
			return nil
		case <-ticker.C:
		}
	}
}

func lastLines(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	trimmed := strings.TrimSuffix(s, "\n")
	lines := strings.Split(trimmed, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n") + "\n"
}
