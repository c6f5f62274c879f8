// Package sessionfile reads and writes the flat session-history file.
//
// Every operation returns a Result value instead of an error so that nothing
// above this layer has to distinguish I/O failure modes: callers check
// Result.Success and fall back to safe defaults.
package sessionfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Result is the outcome of a single file operation.
type Result struct {
	Success    bool
	Data       string
	Error      string
	WasCreated bool
}

// Manager handles history-file access with optional auto-creation.
type Manager struct {
	logger         *slog.Logger
	autoCreate     bool
	defaultContent string
}

func NewManager(logger *slog.Logger, autoCreate bool, defaultContent string) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Manager{
		logger:         logger,
		autoCreate:     autoCreate,
		defaultContent: defaultContent,
	}
}

// EnsureExists creates the file with the default content when it is absent.
// Calling it on an existing file is a no-op that reports WasCreated=false.
func (m *Manager) EnsureExists(path string) Result {
	_, err := os.Stat(path)
	if err == nil {
		return Result{Success: true}
	}
	if !errors.Is(err, fs.ErrNotExist) {
		m.logger.Error("stat session file failed", "path", path, "error", err)
		return Result{Error: err.Error()}
	}

	if !m.autoCreate {
		msg := fmt.Sprintf("file not found: %s", path)
		m.logger.Error("session file missing and auto-create disabled", "path", path)
		return Result{Error: msg}
	}

	if err := writeFileAtomicSameDir(path, []byte(m.defaultContent), 0o644); err != nil {
		m.logger.Error("create session file failed", "path", path, "error", err)
		return Result{Error: err.Error()}
	}
	m.logger.Info("created new session file", "path", path)
	return Result{Success: true, WasCreated: true}
}

// Read ensures the file exists, then returns its full content. Content that
// is not valid UTF-8 is reported as a decoding failure.
func (m *Manager) Read(path string) Result {
	ensure := m.EnsureExists(path)
	if !ensure.Success {
		return ensure
	}

	fi, err := os.Stat(path)
	if err != nil {
		m.logger.Error("stat session file failed", "path", path, "error", err)
		return Result{Error: err.Error()}
	}
	if fi.IsDir() {
		msg := fmt.Sprintf("path is not a file: %s", path)
		m.logger.Error("session file path is a directory", "path", path)
		return Result{Error: msg}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		m.logger.Error("read session file failed", "path", path, "error", err)
		return Result{Error: err.Error()}
	}
	if !utf8.Valid(b) {
		msg := fmt.Sprintf("error decoding the file, please check the file encoding: %s", path)
		m.logger.Error("session file is not valid UTF-8", "path", path)
		return Result{Error: msg}
	}

	m.logger.Debug("read session file", "path", path, "bytes", len(b), "created", ensure.WasCreated)
	return Result{Success: true, Data: string(b), WasCreated: ensure.WasCreated}
}

// Write overwrites the file with the given content in full, creating parent
// directories as needed.
func (m *Manager) Write(path, content string) Result {
	if err := writeFileAtomicSameDir(path, []byte(content), 0o644); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			msg := fmt.Sprintf("permission denied, check file permissions: %s", err)
			m.logger.Error("permission denied writing session file", "path", path, "error", err)
			return Result{Error: msg}
		}
		m.logger.Error("write session file failed", "path", path, "error", err)
		return Result{Error: err.Error()}
	}
	m.logger.Debug("wrote session file", "path", path, "bytes", len(content))
	return Result{Success: true}
}

// writeFileAtomicSameDir writes via a temp file in the target directory and
// renames it into place, so a crash never leaves a half-written history file.
func writeFileAtomicSameDir(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp_session_*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
