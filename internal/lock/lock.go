package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"samplegraph/internal/logging"
)

const (
	// DefaultStaleAfter is the age beyond which a lock record is treated as
	// abandoned. There is no heartbeat renewal in this design; staleness
	// reclamation is the sole liveness path after a holder crashes.
	DefaultStaleAfter = 2 * time.Hour
	// DefaultPollInterval is the sleep between acquisition attempts while a
	// fresh lock record is held by someone else.
	DefaultPollInterval = 5 * time.Second
)

// FileLock is cross-process mutual exclusion over a named resource, using
// only a shared filesystem path as the coordination medium. The record is
// created with an exclusive-create open, never check-then-write.
type FileLock struct {
	path         string
	holder       string
	staleAfter   time.Duration
	pollInterval time.Duration
	dryRun       bool
	logger       *slog.Logger
}

// Info is the decoded content of a lock record.
type Info struct {
	AcquiredAt time.Time
	Holder     string
}

// Option configures a FileLock.
type Option func(*FileLock)

// WithStaleAfter overrides the staleness threshold.
func WithStaleAfter(age time.Duration) Option {
	return func(l *FileLock) {
		if age > 0 {
			l.staleAfter = age
		}
	}
}

// WithPollInterval overrides the acquisition retry interval.
func WithPollInterval(interval time.Duration) Option {
	return func(l *FileLock) {
		if interval > 0 {
			l.pollInterval = interval
		}
	}
}

// WithHolder sets the holder identity written into the lock record. Defaults
// to a generated run id.
func WithHolder(holder string) Option {
	return func(l *FileLock) {
		if strings.TrimSpace(holder) != "" {
			l.holder = holder
		}
	}
}

// WithDryRun makes Acquire always succeed and Release a no-op, without
// creating or removing any filesystem state. Used to preview orchestration
// decisions.
func WithDryRun(enabled bool) Option {
	return func(l *FileLock) {
		l.dryRun = enabled
	}
}

// WithLogger attaches a logger for contention and reclamation events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *FileLock) {
		l.logger = logging.NewComponentLogger(logger, "lock")
	}
}

// New constructs a lock for the named resource under dir. The record lives at
// dir/<name>.lock.
func New(dir, name string, opts ...Option) *FileLock {
	l := &FileLock{
		path:         filepath.Join(dir, name+".lock"),
		holder:       "run-" + uuid.NewString(),
		staleAfter:   DefaultStaleAfter,
		pollInterval: DefaultPollInterval,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the lock record location.
func (l *FileLock) Path() string {
	return l.path
}

// Holder returns the identity this lock writes into its record.
func (l *FileLock) Holder() string {
	return l.holder
}

// Acquire attempts to take the lock, polling until timeout elapses. It
// returns true once a record exists under this caller's identity and false
// when the timeout expires with the lock still held by a fresh record. A
// stale record is forcibly removed and the attempt retried immediately.
func (l *FileLock) Acquire(ctx context.Context, timeout time.Duration) (bool, error) {
	if l.dryRun {
		l.logger.Info("dry run: skipping lock acquisition", logging.String(logging.FieldLock, l.path))
		return true, nil
	}

	deadline := time.Now().Add(timeout)
	for {
		created, err := l.tryCreate()
		if err != nil {
			return false, fmt.Errorf("create lock record: %w", err)
		}
		if created {
			l.logger.Debug("lock acquired",
				logging.String(logging.FieldLock, l.path),
				logging.String("holder", l.holder))
			return true, nil
		}

		stale, err := l.isStale()
		if err != nil {
			return false, err
		}
		if stale {
			// Reclaim and retry without waiting: the previous holder is gone.
			l.logger.Warn("removing stale lock record",
				logging.String(logging.FieldLock, l.path),
				logging.Duration("stale_after", l.staleAfter))
			if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return false, fmt.Errorf("remove stale lock: %w", err)
			}
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			l.logger.Debug("lock acquisition timed out", logging.String(logging.FieldLock, l.path))
			return false, nil
		}
		wait := l.pollInterval
		if wait > remaining {
			wait = remaining
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// Release removes the lock record. Releasing an already-absent lock is not an
// error.
func (l *FileLock) Release() error {
	if l.dryRun {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock record: %w", err)
	}
	return nil
}

// ReadInfo decodes the current lock record. The boolean reports whether a
// record exists.
func (l *FileLock) ReadInfo() (Info, bool, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, false, nil
	}
	if err != nil {
		return Info{}, false, fmt.Errorf("read lock record: %w", err)
	}

	info := Info{}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) > 0 {
		if at, err := time.Parse(time.RFC3339, strings.TrimSpace(lines[0])); err == nil {
			info.AcquiredAt = at
		}
	}
	if len(lines) > 1 {
		info.Holder = strings.TrimSpace(lines[1])
	}
	return info, true, nil
}

func (l *FileLock) tryCreate() (bool, error) {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	content := time.Now().UTC().Format(time.RFC3339) + "\n" + l.holder + "\n"
	if _, err := file.WriteString(content); err != nil {
		_ = file.Close()
		_ = os.Remove(l.path)
		return false, err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(l.path)
		return false, err
	}
	return true, nil
}

// isStale derives staleness from file modification time. A missing record is
// never stale; it is simply not locked.
func (l *FileLock) isStale() (bool, error) {
	info, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat lock record: %w", err)
	}
	return time.Since(info.ModTime()) > l.staleAfter, nil
}
