// Package filesink appends log entries to a day-scoped local file with
// size-based rotation and count-based retention.
//
// Every append opens the file, writes one record, syncs, and closes, so no
// entry is ever held only in memory. The size check, the rotation rename, and
// the write itself run under both an in-process mutex and a flock-based file
// lock, keeping the check-then-rename sequence atomic even when several
// chronicle processes target the same log directory.
package filesink

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"chronicle/internal/entry"
	"chronicle/internal/logging"
)

// Options carries the file-sink portion of a settings snapshot.
type Options struct {
	Dir      string
	BaseName string
	MaxBytes int64
	MaxFiles int
}

// Sink writes entries to the active log file.
type Sink struct {
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time

	lockPath string
	lock     *flock.Flock
}

// SinkOption customizes sink construction.
type SinkOption func(*Sink)

// WithClock replaces the sink's time source, used by rotation naming and the
// day scope. Tests use this to step across rotation boundaries.
func WithClock(now func() time.Time) SinkOption {
	return func(s *Sink) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a file sink. A nil logger degrades to no-op.
func New(logger *slog.Logger, opts ...SinkOption) *Sink {
	sink := &Sink{
		logger: logging.NewComponentLogger(logger, "filesink"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink
}

// ActivePath returns the day-scoped file the sink would currently append to.
func (s *Sink) ActivePath(opts Options) string {
	day := s.now().UTC().Format("20060102")
	return filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", opts.BaseName, day))
}

// Append writes one record, rotating the active file first when it has
// reached the size threshold.
func (s *Sink) Append(e *entry.Entry, opts Options) error {
	line, err := e.EncodeLine()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return fmt.Errorf("ensure log directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acquireFileLock(opts.Dir, opts.BaseName); err != nil {
		return err
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	active := s.ActivePath(opts)
	if err := s.rotateIfNeeded(active, opts); err != nil {
		return err
	}

	file, err := os.OpenFile(active, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", active, err)
	}
	if _, err := file.Write(line); err != nil {
		_ = file.Close()
		return fmt.Errorf("append to log file %s: %w", active, err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("flush log file %s: %w", active, err)
	}
	return file.Close()
}

// acquireFileLock holds a lock file scoped to the active log path so the
// rotation boundary is single-writer across processes.
func (s *Sink) acquireFileLock(dir, baseName string) error {
	lockPath := filepath.Join(dir, "."+baseName+".lock")
	if s.lock == nil || s.lockPath != lockPath {
		s.lockPath = lockPath
		s.lock = flock.New(lockPath)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire log lock %s: %w", lockPath, err)
	}
	return nil
}

func (s *Sink) rotateIfNeeded(active string, opts Options) error {
	info, err := os.Stat(active)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat log file %s: %w", active, err)
	}
	if opts.MaxBytes <= 0 || info.Size() < opts.MaxBytes {
		return nil
	}

	rotated, err := s.rotatedName(active)
	if err != nil {
		return err
	}
	if err := os.Rename(active, rotated); err != nil {
		return fmt.Errorf("rotate log file %s: %w", active, err)
	}
	s.logger.Info("log rotated",
		logging.String(logging.FieldPath, rotated),
	)

	s.prune(opts)
	return nil
}

// rotatedName derives <basename>_<yyyyMMdd_HHmmss><ext> from the active file,
// stepping the timestamp forward when two rotations land in the same second.
func (s *Sink) rotatedName(active string) (string, error) {
	ext := filepath.Ext(active)
	base := strings.TrimSuffix(active, ext)
	stamp := s.now().UTC()
	for i := 0; i < 60; i++ {
		candidate := fmt.Sprintf("%s_%s%s", base, stamp.Format("20060102_150405"), ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
		stamp = stamp.Add(time.Second)
	}
	return "", fmt.Errorf("no free rotated name for %s", active)
}

// prune removes rotated files beyond MaxFiles, oldest first by last-write
// time. The active day files never match the rotated pattern. Failures are
// logged and skipped; retention never fails an append.
func (s *Sink) prune(opts Options) {
	if opts.MaxFiles <= 0 {
		return
	}
	pattern := fmt.Sprintf("%s_????????_????????_??????.log", opts.BaseName)

	entries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return
	}
	type rotatedFile struct {
		path    string
		modTime time.Time
	}
	var rotated []rotatedFile
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		matched, err := filepath.Match(pattern, ent.Name())
		if err != nil || !matched {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		rotated = append(rotated, rotatedFile{
			path:    filepath.Join(opts.Dir, ent.Name()),
			modTime: info.ModTime(),
		})
	}
	if len(rotated) <= opts.MaxFiles {
		return
	}

	sort.Slice(rotated, func(i, j int) bool { return rotated[i].modTime.After(rotated[j].modTime) })
	for _, old := range rotated[opts.MaxFiles:] {
		if err := os.Remove(old.path); err != nil {
			s.logger.Warn("log retention remove failed; file remains",
				logging.String(logging.FieldPath, old.path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "old rotated log remains on disk"),
			)
			continue
		}
		s.logger.Info("rotated log pruned",
			logging.String(logging.FieldPath, old.path),
		)
	}
}
