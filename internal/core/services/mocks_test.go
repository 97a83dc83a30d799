package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/adapters/driven/config/file"
	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockModel is a testify mock of driven.GenerativeModel.
type mockModel struct {
	mock.Mock
}

func (m *mockModel) Generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockModel) ModelName() string {
	return "mock-model"
}

func (m *mockModel) Ping(_ context.Context) error {
	return nil
}

func (m *mockModel) Close() error {
	return nil
}

// scriptedModel answers each request through respond and records prompts.
type scriptedModel struct {
	mu      sync.Mutex
	prompts []string
	respond func(req driven.GenerateRequest) (string, error)
}

func (m *scriptedModel) Generate(_ context.Context, req driven.GenerateRequest) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, req.Prompt)
	m.mu.Unlock()
	return m.respond(req)
}

func (m *scriptedModel) ModelName() string {
	return "scripted"
}

func (m *scriptedModel) Ping(_ context.Context) error {
	return nil
}

func (m *scriptedModel) Close() error {
	return nil
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *scriptedModel) promptsContaining(s string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.prompts {
		if strings.Contains(p, s) {
			n++
		}
	}
	return n
}

// fakeEmbedder returns vectors from vectorFor and counts calls per task.
type fakeEmbedder struct {
	mu        sync.Mutex
	docCalls  int
	qryCalls  int
	failDocs  bool
	vectorFor func(text string) []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string, task driven.EmbedTask) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task == driven.EmbedTaskDocument {
		f.docCalls++
		if f.failDocs {
			return nil, &domain.APIError{StatusCode: 500, Message: "embedding backend down"}
		}
	} else {
		f.qryCalls++
	}
	return f.vectorFor(text), nil
}

func (f *fakeEmbedder) ModelName() string {
	return "fake-embed"
}

func (f *fakeEmbedder) Ping(_ context.Context) error {
	return nil
}

func (f *fakeEmbedder) Close() error {
	return nil
}

// staticCorpus implements driven.CorpusSource.
type staticCorpus struct {
	items []domain.CorpusItem
}

func (c staticCorpus) Items(_ context.Context) ([]domain.CorpusItem, error) {
	return c.items, nil
}

func (c staticCorpus) Path() string {
	return ""
}

// recordingSleeper captures backoff delays without sleeping.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return r.err
}

func noJitter() time.Duration {
	return 0
}

// fastInvoker returns an invoker that never sleeps.
func fastInvoker(model driven.GenerativeModel) *ModelInvoker {
	s := &recordingSleeper{}
	return NewModelInvoker(model, WithSleeper(s.sleep), WithJitter(noJitter))
}

func ptr(s string) *string {
	return &s
}

func newTestPrompts(t *testing.T) driven.PromptStore {
	t.Helper()
	store, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)
	return store
}
