package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careermatch/internal/config"
	"careermatch/internal/errors"
)

func newTestStore(t *testing.T, persist bool) *Store {
	t.Helper()
	logger, err := errors.New("debug")
	require.NoError(t, err)

	base := t.TempDir()
	return NewStore(config.StorageConfig{
		JobsDir:          filepath.Join(base, "jobs"),
		OutputsDir:       filepath.Join(base, "outputs"),
		PersistArtifacts: persist,
	}, logger)
}

func TestNewJob(t *testing.T) {
	store := newTestStore(t, false)

	id := store.NewJob()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), id)

	record, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, record.ID)
	assert.Equal(t, StatusUploaded, record.Status)
	assert.False(t, record.CreatedAt.IsZero())

	other := store.NewJob()
	assert.NotEqual(t, id, other)
}

func TestGetUnknownJob(t *testing.T) {
	store := newTestStore(t, false)

	_, ok := store.Get("feedfacefeedfacefeedfacefeedface")
	assert.False(t, ok)
}

func TestJobLifecycle(t *testing.T) {
	store := newTestStore(t, false)
	id := store.NewJob()

	store.SetStatus(id, StatusRunning, "")
	record, _ := store.Get(id)
	assert.Equal(t, StatusRunning, record.Status)

	store.SetJobTitle(id, "Backend Engineer")
	record, _ = store.Get(id)
	assert.Equal(t, "Backend Engineer", record.JobTitle)

	store.SetResult(id, []byte(`{"fit":{}}`), []byte("<html></html>"))
	record, _ = store.Get(id)
	assert.Equal(t, StatusDone, record.Status)
	assert.Equal(t, []byte(`{"fit":{}}`), record.ReportJSON)
	assert.Equal(t, []byte("<html></html>"), record.ReportHTML)
	assert.Empty(t, record.Error)
}

func TestSetStatusError(t *testing.T) {
	store := newTestStore(t, false)
	id := store.NewJob()

	store.SetStatus(id, StatusError, "upstream timed out")
	record, _ := store.Get(id)
	assert.Equal(t, StatusError, record.Status)
	assert.Equal(t, "upstream timed out", record.Error)

	// Restarting the job clears the previous error.
	store.SetStatus(id, StatusRunning, "")
	record, _ = store.Get(id)
	assert.Equal(t, StatusRunning, record.Status)
	assert.Empty(t, record.Error)
}

func TestSetStatusUnknownJob(t *testing.T) {
	store := newTestStore(t, false)

	// Must not panic or create a record.
	store.SetStatus("missing", StatusRunning, "")
	store.SetJobTitle("missing", "title")
	store.SetResult("missing", nil, nil)

	counts := store.CountByStatus()
	assert.Empty(t, counts)
}

func TestCountByStatus(t *testing.T) {
	store := newTestStore(t, false)

	a := store.NewJob()
	b := store.NewJob()
	store.NewJob()

	store.SetStatus(a, StatusRunning, "")
	store.SetStatus(b, StatusError, "boom")

	counts := store.CountByStatus()
	assert.Equal(t, 1, counts[StatusUploaded])
	assert.Equal(t, 1, counts[StatusRunning])
	assert.Equal(t, 1, counts[StatusError])
	assert.Zero(t, counts[StatusDone])
}

func TestSaveArtifactsPersisted(t *testing.T) {
	store := newTestStore(t, true)
	id := store.NewJob()

	require.NoError(t, store.SaveInput(id, "cv.txt", "cv content"))
	require.NoError(t, store.SaveOutput(id, "report.html", []byte("<html></html>")))

	cv, err := os.ReadFile(filepath.Join(store.jobsDir, id, "cv.txt"))
	require.NoError(t, err)
	assert.Equal(t, "cv content", string(cv))

	report, err := os.ReadFile(filepath.Join(store.outputsDir, id, "report.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(report))
}

func TestSaveDebugPersisted(t *testing.T) {
	store := newTestStore(t, true)
	id := store.NewJob()

	require.NoError(t, store.SaveDebug(id, "fit_raw.txt", "raw model output"))

	raw, err := os.ReadFile(filepath.Join(store.jobsDir, id, "llm", "fit_raw.txt"))
	require.NoError(t, err)
	assert.Equal(t, "raw model output", string(raw))
}

func TestSaveArtifactsDisabled(t *testing.T) {
	store := newTestStore(t, false)
	id := store.NewJob()

	require.NoError(t, store.SaveInput(id, "cv.txt", "cv content"))
	require.NoError(t, store.SaveOutput(id, "report.html", []byte("x")))
	require.NoError(t, store.SaveDebug(id, "fit_raw.txt", "raw"))

	_, err := os.Stat(filepath.Join(store.jobsDir, id))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store.outputsDir, id))
	assert.True(t, os.IsNotExist(err))
}

func TestGetReturnsCopy(t *testing.T) {
	store := newTestStore(t, false)
	id := store.NewJob()

	record, _ := store.Get(id)
	record.Status = StatusDone

	fresh, _ := store.Get(id)
	assert.Equal(t, StatusUploaded, fresh.Status)
}
