package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/gemini"
	"ai-docstore-be/pkg/operation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	stores   []gemini.Store
	created  []string
	uploaded []string
	failOn   string
	failErr  error
	pending  bool
	listErr  error
	opChecks int
	garbled  bool
}

func (b *fakeBackend) ListStores(ctx context.Context) ([]gemini.Store, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.stores, nil
}

func (b *fakeBackend) CreateStore(ctx context.Context, displayName string) (*gemini.Store, error) {
	b.created = append(b.created, displayName)
	s := gemini.Store{Name: "fileSearchStores/" + displayName + "-id", DisplayName: displayName}
	b.stores = append(b.stores, s)
	return &s, nil
}

func (b *fakeBackend) UploadFile(ctx context.Context, storeName string, up gemini.Upload) (*operation.Status, error) {
	b.uploaded = append(b.uploaded, up.DisplayName)
	if up.DisplayName == b.failOn {
		return nil, b.failErr
	}
	resp, _ := json.Marshal(map[string]string{"documentName": storeName + "/documents/" + up.DisplayName})
	if b.garbled {
		resp = json.RawMessage(`{"documentName":`)
	}
	if b.pending {
		return &operation.Status{Name: "op/" + up.DisplayName}, nil
	}
	return &operation.Status{Name: "op/" + up.DisplayName, Done: true, Response: resp}, nil
}

func (b *fakeBackend) GetOperation(ctx context.Context, name string) (*operation.Status, error) {
	b.opChecks++
	return &operation.Status{Name: name, Done: true}, nil
}

// fakeWaiter resolves every operation on its first check.
type fakeWaiter struct {
	handles []string
	err     error
}

func (w *fakeWaiter) Await(ctx context.Context, handle string, check operation.CheckFunc) (json.RawMessage, error) {
	w.handles = append(w.handles, handle)
	if w.err != nil {
		return nil, w.err
	}
	st, err := check(ctx, handle)
	if err != nil {
		return nil, err
	}
	return st.Response, nil
}

type recordingLogger struct {
	mu    sync.Mutex
	debug []string
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, message)
}
func (l *recordingLogger) Info(module, message string, details map[string]interface{})  {}
func (l *recordingLogger) Warn(module, message string, details map[string]interface{})  {}
func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {}
func (l *recordingLogger) Sync() error                                                  { return nil }

func threeFiles() []File {
	return []File{
		{Name: "a.txt", Data: []byte("alpha")},
		{Name: "b.txt", Data: []byte("bravo")},
		{Name: "c.txt", Data: []byte("charlie")},
	}
}

func TestRunProgressReachesHundred(t *testing.T) {
	backend := &fakeBackend{}
	o := NewOrchestrator(backend, &fakeWaiter{}, Options{}, nil)

	var reports []Progress
	res, err := o.Run(context.Background(), "Manuals", threeFiles(), nil, func(p Progress) { reports = append(reports, p) })
	require.NoError(t, err)

	assert.Equal(t, []string{"Manuals"}, backend.created)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, backend.uploaded)
	assert.Equal(t, 3, res.Succeeded())
	assert.Equal(t, "fileSearchStores/Manuals-id/documents/a.txt", res.Files[0].DocumentName)

	// after file 1 of 3: 5 + floor(95/3)
	var afterFirst *Progress
	for i := range reports {
		if reports[i].FileIndex == 0 && reports[i].Message == "Uploaded a.txt (1/3)" {
			afterFirst = &reports[i]
		}
	}
	require.NotNil(t, afterFirst)
	assert.Equal(t, 36, afterFirst.Percent)

	last := reports[len(reports)-1]
	assert.Equal(t, 100, last.Percent)
	assert.Equal(t, PhaseDone, last.Phase)

	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i].Percent, reports[i-1].Percent)
	}
	for _, p := range reports[:len(reports)-1] {
		if p.Phase != PhaseDone && p.FileIndex < 2 {
			assert.Less(t, p.Percent, 100)
		}
	}
}

func TestUploadFailFast(t *testing.T) {
	boom := errors.New("upload exploded")
	backend := &fakeBackend{failOn: "b.txt", failErr: boom}
	o := NewOrchestrator(backend, &fakeWaiter{}, Options{}, nil)

	res, err := o.Run(context.Background(), "Manuals", threeFiles(), nil, nil)
	require.Error(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt"}, backend.uploaded)
	require.NotNil(t, res)
	assert.Equal(t, FileSucceeded, res.Files[0].Status)
	assert.Equal(t, FileFailed, res.Files[1].Status)
	assert.Equal(t, FileSkipped, res.Files[2].Status)

	var partial *PartialUploadError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "b.txt", partial.FileName)
	assert.Equal(t, 1, partial.Succeeded)
	assert.Equal(t, 1, partial.Skipped)
	assert.ErrorIs(t, err, boom)
}

func TestUploadFailureKeepsCredentialKind(t *testing.T) {
	backend := &fakeBackend{failOn: "a.txt", failErr: &apperror.CredentialError{}}
	o := NewOrchestrator(backend, &fakeWaiter{}, Options{}, nil)

	_, err := o.Run(context.Background(), "Manuals", threeFiles(), nil, nil)
	assert.Equal(t, apperror.KindCredential, apperror.Classify(err))
}

func TestPendingOperationIsAwaited(t *testing.T) {
	backend := &fakeBackend{pending: true}
	waiter := &fakeWaiter{}
	o := NewOrchestrator(backend, waiter, Options{}, nil)

	var phases []Phase
	_, err := o.Run(context.Background(), "Manuals", threeFiles()[:2], nil, func(p Progress) { phases = append(phases, p.Phase) })
	require.NoError(t, err)
	assert.Equal(t, []string{"op/a.txt", "op/b.txt"}, waiter.handles)
	assert.Equal(t, 2, backend.opChecks)
	assert.Contains(t, phases, PhaseProcessing)
}

func TestOperationTimeoutStopsBatch(t *testing.T) {
	backend := &fakeBackend{pending: true}
	waiter := &fakeWaiter{err: &operation.TimeoutError{Handle: "op/a.txt", Attempts: 20}}
	o := NewOrchestrator(backend, waiter, Options{}, nil)

	res, err := o.Run(context.Background(), "Manuals", threeFiles(), nil, nil)
	assert.ErrorIs(t, err, operation.ErrTimeout)
	assert.Equal(t, apperror.KindOperationTimeout, apperror.Classify(err))
	assert.Equal(t, FileFailed, res.Files[0].Status)
	assert.Len(t, backend.uploaded, 1)
}

func TestEnsureStoreReusesExisting(t *testing.T) {
	backend := &fakeBackend{stores: []gemini.Store{
		{Name: "fileSearchStores/one", DisplayName: "One"},
		{Name: "fileSearchStores/two", DisplayName: "Two"},
	}}
	o := NewOrchestrator(backend, nil, Options{}, nil)

	byDisplay, err := o.EnsureStore(context.Background(), "Two")
	require.NoError(t, err)
	assert.Equal(t, "fileSearchStores/two", byDisplay.Name)

	byName, err := o.EnsureStore(context.Background(), "fileSearchStores/one")
	require.NoError(t, err)
	assert.Equal(t, "One", byName.DisplayName)

	assert.Empty(t, backend.created)

	_, err = o.EnsureStore(context.Background(), "fileSearchStores/missing")
	assert.Equal(t, apperror.KindNotFound, apperror.Classify(err))
}

func TestValidationHappensBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{}
	o := NewOrchestrator(backend, nil, Options{RequireVersion: true}, nil)

	build := func(i int, f File) []gemini.CustomMetadata {
		if i == 1 {
			return []gemini.CustomMetadata{gemini.StringMeta("version", "v2")}
		}
		return []gemini.CustomMetadata{gemini.StringMeta("version", "1.0")}
	}
	_, err := o.Run(context.Background(), "Manuals", threeFiles(), build, nil)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.Classify(err))
	assert.Empty(t, backend.created)
	assert.Empty(t, backend.uploaded)
}

func TestPrepareRejectsOversizedFile(t *testing.T) {
	o := NewOrchestrator(&fakeBackend{}, nil, Options{MaxBytes: 4}, nil)
	_, err := o.Prepare([]File{{Name: "big.bin", Data: []byte("12345")}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "big.bin")
}

func TestPrepareDetectsMIME(t *testing.T) {
	o := NewOrchestrator(&fakeBackend{}, nil, Options{}, nil)
	files, err := o.Prepare([]File{
		{Name: "doc.pdf", Data: []byte("%PDF-1.7\n...")},
		{Name: "notes.md", Data: []byte("# Title\nplain words")},
		{Name: "given.csv", MIMEType: "text/csv", Data: []byte("a,b")},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", files[0].MIMEType)
	assert.Contains(t, files[1].MIMEType, "text/")
	assert.Equal(t, "text/csv", files[2].MIMEType)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 5, Percent(5, 0, 0, 3))
	assert.Equal(t, 36, Percent(5, 1, 0, 3))
	assert.Equal(t, 68, Percent(5, 2, 0, 3))
	assert.Equal(t, 100, Percent(5, 3, 0, 3))
	assert.Equal(t, 100, Percent(5, 0, 1, 1))
	assert.Equal(t, 100, Percent(5, 0, 0, 0))
}

func TestUnreadableOperationResponseIsLogged(t *testing.T) {
	backend := &fakeBackend{garbled: true}
	log := &recordingLogger{}
	o := NewOrchestrator(backend, &fakeWaiter{}, Options{}, log)

	res, err := o.Run(context.Background(), "Manuals", threeFiles()[:1], nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, FileSucceeded, res.Files[0].Status)
	assert.Empty(t, res.Files[0].DocumentName)
	assert.Contains(t, log.debug, "Unreadable operation response")
}
