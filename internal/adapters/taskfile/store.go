package taskfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"songforge/internal/core/domain"
	"songforge/internal/core/ports"
)

// Store persists the most recent task id per job kind so a later process
// invocation can resume monitoring without re-submitting the job. One slot
// per kind; a new submission overwrites the previous record.
//
// The store assumes a single process: concurrent invocations racing over
// the same slot are not coordinated.
type Store struct {
	baseDir string
	logger  zerolog.Logger
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string, logger zerolog.Logger) *Store {
	return &Store{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "taskfile").Logger(),
	}
}

// Save overwrites the record for the job's kind. The record is written to a
// temporary file in the same directory and renamed into place, so a crash
// mid-write never leaves a record Load cannot parse.
func (s *Store) Save(ctx context.Context, rec domain.TaskRecord) error {
	if rec.TaskID == "" {
		return fmt.Errorf("task id is empty")
	}
	if !rec.Kind.Valid() {
		return fmt.Errorf("unknown job kind %q", rec.Kind)
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %s: %w", s.baseDir, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task record: %w", err)
	}

	dest := s.recordPath(rec.Kind)
	tmp, err := os.CreateTemp(s.baseDir, ".task-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp record: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace record %s: %w", dest, err)
	}

	s.logger.Debug().Str("kind", string(rec.Kind)).Str("task_id", rec.TaskID).
		Str("path", dest).Msg("task record saved")
	return nil
}

// Load returns the last saved record for kind. Missing, unreadable, or
// corrupt records all degrade to "no prior task" rather than an error.
func (s *Store) Load(ctx context.Context, kind domain.JobKind) (domain.TaskRecord, bool) {
	path := s.recordPath(kind)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("task record unreadable, treating as absent")
		}
		return domain.TaskRecord{}, false
	}

	var rec domain.TaskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("task record corrupt, treating as absent")
		return domain.TaskRecord{}, false
	}
	if rec.TaskID == "" || rec.Kind != kind {
		s.logger.Warn().Str("path", path).Msg("task record inconsistent, treating as absent")
		return domain.TaskRecord{}, false
	}
	return rec, true
}

func (s *Store) recordPath(kind domain.JobKind) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("last_%s_task.json", kind))
}

var _ ports.TaskStore = (*Store)(nil)
