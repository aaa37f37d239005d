// Package storage tracks analysis jobs and their on-disk artifacts.
package storage

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"careermatch/internal/config"
	"careermatch/internal/errors"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of one analysis job.
type JobStatus string

const (
	StatusUploaded JobStatus = "UPLOADED"
	StatusRunning  JobStatus = "RUNNING"
	StatusDone     JobStatus = "DONE"
	StatusError    JobStatus = "ERROR"
)

// JobRecord is the in-memory state of one job. Report payloads are kept in
// memory so downloads work even when artifact persistence is disabled.
type JobRecord struct {
	ID         string    `json:"id"`
	Status     JobStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	JobTitle   string    `json:"job_title,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ReportJSON []byte    `json:"-"`
	ReportHTML []byte    `json:"-"`
}

// Store is an in-memory job registry with optional artifact persistence
// under the jobs/ and outputs/ directories.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*JobRecord

	jobsDir    string
	outputsDir string
	persist    bool
	logger     *errors.Logger
}

// NewStore builds a Store from the storage configuration.
func NewStore(cfg config.StorageConfig, logger *errors.Logger) *Store {
	return &Store{
		jobs:       make(map[string]*JobRecord),
		jobsDir:    cfg.JobsDir,
		outputsDir: cfg.OutputsDir,
		persist:    cfg.PersistArtifacts,
		logger:     logger,
	}
}

// NewJob registers a new job in UPLOADED state and returns its ID, a 32-char
// lowercase hex string.
func (s *Store) NewJob() string {
	u := uuid.New()
	id := hex.EncodeToString(u[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.jobs[id] = &JobRecord{
		ID:        id,
		Status:    StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id
}

// Get returns a copy of the job record.
func (s *Store) Get(id string) (JobRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.jobs[id]
	if !ok {
		return JobRecord{}, false
	}
	return *record, true
}

// SetStatus transitions a job to a new status. The error message is cleared
// unless the new status is ERROR.
func (s *Store) SetStatus(id string, status JobStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.jobs[id]
	if !ok {
		return
	}
	record.Status = status
	record.UpdatedAt = time.Now()
	if status == StatusError {
		record.Error = errMsg
	} else {
		record.Error = ""
	}
}

// SetJobTitle records the extracted posting title for a job.
func (s *Store) SetJobTitle(id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.jobs[id]; ok {
		record.JobTitle = title
		record.UpdatedAt = time.Now()
	}
}

// SetResult stores the finished reports and marks the job DONE.
func (s *Store) SetResult(id string, reportJSON, reportHTML []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.jobs[id]
	if !ok {
		return
	}
	record.ReportJSON = reportJSON
	record.ReportHTML = reportHTML
	record.Status = StatusDone
	record.Error = ""
	record.UpdatedAt = time.Now()
}

// CountByStatus returns the number of jobs in each status.
func (s *Store) CountByStatus() map[JobStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[JobStatus]int)
	for _, record := range s.jobs {
		counts[record.Status]++
	}
	return counts
}

// SaveInput writes a per-job input artifact (cv.txt, job.txt, raw HTML,
// error.txt) under jobs/<id>/. A no-op when persistence is disabled.
func (s *Store) SaveInput(id, filename, content string) error {
	if !s.persist {
		return nil
	}
	return s.writeArtifact(filepath.Join(s.jobsDir, id), filename, content)
}

// SaveDebug writes a per-job model debug artifact (raw and extracted stage
// output, rejection details) under jobs/<id>/llm/. A no-op when persistence
// is disabled.
func (s *Store) SaveDebug(id, filename, content string) error {
	if !s.persist {
		return nil
	}
	return s.writeArtifact(filepath.Join(s.jobsDir, id, "llm"), filename, content)
}

// SaveOutput writes a per-job output artifact (fit_report.json, report.html)
// under outputs/<id>/. A no-op when persistence is disabled.
func (s *Store) SaveOutput(id, filename string, content []byte) error {
	if !s.persist {
		return nil
	}
	return s.writeArtifact(filepath.Join(s.outputsDir, id), filename, string(content))
}

func (s *Store) writeArtifact(dir, filename, content string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to create artifact directory %s", dir), err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to write artifact %s", path), err)
	}

	s.logger.Debug("Artifact written", "path", path, "bytes", len(content))
	return nil
}
