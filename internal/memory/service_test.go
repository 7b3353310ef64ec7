package memory

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"testing"
	"time"

	adkmemory "google.golang.org/adk/memory"
	"google.golang.org/adk/model"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/easeaico/lifebot/internal/storage"
	"github.com/easeaico/lifebot/internal/types"
)

func TestRememberEmbedsUserTurnsOnly(t *testing.T) {
	repo := &mockConversationRepo{}
	embedder := &mockEmbedder{documentVec: []float32{0.1, 0.2}}
	svc := NewService(embedder, repo, Options{HistoryLimit: 5})

	ctx := context.Background()
	if err := svc.Remember(ctx, "s1", types.RoleUser, "7시간 잤어", "sleep"); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}
	if err := svc.Remember(ctx, "s1", types.RoleAssistant, "✓ 수면 기록 완료: 7시간", ""); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}
	if err := svc.Remember(ctx, "s1", types.RoleUser, "   ", ""); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}

	if len(repo.added) != 2 {
		t.Fatalf("expected 2 stored turns, got %d", len(repo.added))
	}
	if len(repo.added[0].Embedding) != 2 || repo.added[0].Intent != "sleep" {
		t.Fatalf("expected embedded user turn, got %+v", repo.added[0])
	}
	if repo.added[1].Embedding != nil {
		t.Fatalf("expected assistant turn without embedding")
	}
	if len(embedder.docInputs) != 1 {
		t.Fatalf("expected one document embedding, got %v", embedder.docInputs)
	}
}

func TestRememberKeepsTurnWhenEmbeddingFails(t *testing.T) {
	repo := &mockConversationRepo{}
	svc := NewService(&mockEmbedder{err: errors.New("quota")}, repo, Options{})
	if err := svc.Remember(context.Background(), "s1", types.RoleUser, "30분 운동", ""); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}
	if len(repo.added) != 1 || repo.added[0].Embedding != nil {
		t.Fatalf("expected turn stored without vector, got %+v", repo.added)
	}
}

func TestRecallMergesHistoryAndSimilar(t *testing.T) {
	repo := &mockConversationRepo{
		recent: []types.ConversationTurn{{Role: types.RoleUser, Content: "어제 6시간 잤어"}},
		similar: []types.RetrievedMemory{
			{Role: types.RoleUser, Content: "어제 6시간 잤어", Similarity: 0.95},
			{Role: types.RoleUser, Content: "민수랑 점심 먹었어", Similarity: 0.8},
		},
	}
	embedder := &mockEmbedder{queryVec: []float32{0.4}}
	svc := NewService(embedder, repo, Options{HistoryLimit: 5, TopK: 2, Threshold: 0.75})

	got, err := svc.Recall(context.Background(), "s1", "민수 만난 거 기억나?")
	if err != nil {
		t.Fatalf("Recall returned error: %v", err)
	}
	if len(got.History) != 1 {
		t.Fatalf("expected one history turn, got %d", len(got.History))
	}
	if len(got.Related) != 1 || got.Related[0].Content != "민수랑 점심 먹었어" {
		t.Fatalf("expected duplicate removed from related, got %+v", got.Related)
	}
	if repo.searchTopK != 2 || repo.searchThreshold != 0.75 {
		t.Fatalf("unexpected search bounds: %d %f", repo.searchTopK, repo.searchThreshold)
	}
	if repo.recentLimit != 5 || repo.recentSession != "s1" {
		t.Fatalf("unexpected history query: %d %s", repo.recentLimit, repo.recentSession)
	}
}

func TestRecallWithoutEmbedderSkipsSearch(t *testing.T) {
	repo := &mockConversationRepo{recent: []types.ConversationTurn{{Role: types.RoleUser, Content: "hi"}}}
	svc := NewService(nil, repo, Options{HistoryLimit: 3})
	got, err := svc.Recall(context.Background(), "s1", "query")
	if err != nil {
		t.Fatalf("Recall returned error: %v", err)
	}
	if len(got.Related) != 0 || repo.searchCalls != 0 {
		t.Fatalf("expected no similarity search without embedder")
	}
	if len(got.History) != 1 {
		t.Fatalf("expected history still returned, got %d", len(got.History))
	}
}

func TestRecallHistoryFromSQLite(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "memory.db"), storage.Options{Silent: true})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	svc := NewService(nil, store.Conversations, Options{HistoryLimit: 2})
	for _, text := range []string{"첫째", "둘째", "셋째"} {
		if err := svc.Remember(ctx, "s1", types.RoleUser, text, ""); err != nil {
			t.Fatalf("Remember returned error: %v", err)
		}
	}
	got, err := svc.Recall(ctx, "s1", "")
	if err != nil {
		t.Fatalf("Recall returned error: %v", err)
	}
	if len(got.History) != 2 || got.History[0].Content != "둘째" || got.History[1].Content != "셋째" {
		t.Fatalf("unexpected history: %+v", got.History)
	}
}

func TestAddSessionStoresLastEvent(t *testing.T) {
	repo := &mockConversationRepo{}
	svc := NewService(nil, repo, Options{})
	sess := newMockSession("session-1", []sessionEvent{
		{role: string(genai.RoleUser), text: "7시간 잤어"},
		{role: string(genai.RoleModel), text: "✓ 수면 기록 완료: 7시간"},
	})

	if err := svc.AddSession(context.Background(), sess); err != nil {
		t.Fatalf("AddSession returned error: %v", err)
	}
	if len(repo.added) != 1 {
		t.Fatalf("expected one stored turn, got %d", len(repo.added))
	}
	if repo.added[0].Role != types.RoleAssistant || repo.added[0].SessionID != "session-1" {
		t.Fatalf("unexpected stored turn: %+v", repo.added[0])
	}
}

func TestSearchReturnsEntries(t *testing.T) {
	repo := &mockConversationRepo{similar: []types.RetrievedMemory{
		{Role: types.RoleUser, Content: "민수 생일은 5월", Similarity: 0.9, CreatedAt: time.Unix(10, 0)},
	}}
	embedder := &mockEmbedder{queryVec: []float32{0.3}}
	svc := NewService(embedder, repo, Options{})

	resp, err := svc.Search(context.Background(), &adkmemory.SearchRequest{Query: "민수 생일"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(resp.Memories) != 1 {
		t.Fatalf("expected one entry, got %d", len(resp.Memories))
	}
	entry := resp.Memories[0]
	if entry.Author != types.RoleUser || entry.Content.Role != string(genai.RoleUser) || entry.Content.Parts[0].Text != "민수 생일은 5월" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(embedder.queryInputs) != 1 || embedder.queryInputs[0] != "민수 생일" {
		t.Fatalf("expected query embedding, got %v", embedder.queryInputs)
	}
}

func TestFitDimensions(t *testing.T) {
	long := make([]float32, EmbeddingDimensions+10)
	got, err := fitDimensions(long, "m")
	if err != nil || len(got) != EmbeddingDimensions {
		t.Fatalf("expected truncation, got %d %v", len(got), err)
	}
	if _, err := fitDimensions(make([]float32, 10), "m"); err == nil {
		t.Fatalf("expected error for short vector")
	}
}

type mockEmbedder struct {
	documentVec []float32
	queryVec    []float32
	err         error
	docInputs   []string
	queryInputs []string
}

func (m *mockEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	m.queryInputs = append(m.queryInputs, text)
	return m.queryVec, m.err
}

func (m *mockEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	m.docInputs = append(m.docInputs, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.documentVec, nil
}

type mockConversationRepo struct {
	added           []types.ConversationTurn
	recent          []types.ConversationTurn
	similar         []types.RetrievedMemory
	recentSession   string
	recentLimit     int
	searchCalls     int
	searchTopK      int
	searchThreshold float64
}

func (m *mockConversationRepo) AddTurn(_ context.Context, turn types.ConversationTurn) error {
	m.added = append(m.added, turn)
	return nil
}

func (m *mockConversationRepo) Recent(_ context.Context, sessionID string, limit int) ([]types.ConversationTurn, error) {
	m.recentSession, m.recentLimit = sessionID, limit
	return m.recent, nil
}

func (m *mockConversationRepo) SearchSimilar(_ context.Context, _ []float32, topK int, threshold float64) ([]types.RetrievedMemory, error) {
	m.searchCalls++
	m.searchTopK, m.searchThreshold = topK, threshold
	return m.similar, nil
}

type sessionEvent struct {
	role string
	text string
}

func newMockSession(id string, events []sessionEvent) session.Session {
	list := make([]*session.Event, 0, len(events))
	for _, e := range events {
		list = append(list, &session.Event{
			LLMResponse: model.LLMResponse{
				Content: genai.NewContentFromText(e.text, genai.Role(e.role)),
			},
		})
	}
	return &mockSession{id: id, events: &mockEvents{events: list}}
}

type mockSession struct {
	id     string
	events *mockEvents
}

func (m *mockSession) ID() string                { return m.id }
func (m *mockSession) AppName() string           { return "lifebot" }
func (m *mockSession) UserID() string            { return "user" }
func (m *mockSession) State() session.State      { return &mockState{} }
func (m *mockSession) Events() session.Events    { return m.events }
func (m *mockSession) LastUpdateTime() time.Time { return time.Now() }

type mockState struct {
	data map[string]any
}

func (m *mockState) Get(key string) (any, error) {
	val, ok := m.data[key]
	if !ok {
		return nil, session.ErrStateKeyNotExist
	}
	return val, nil
}

func (m *mockState) Set(key string, value any) error {
	if m.data == nil {
		m.data = map[string]any{}
	}
	m.data[key] = value
	return nil
}

func (m *mockState) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for k, v := range m.data {
			if !yield(k, v) {
				return
			}
		}
	}
}

type mockEvents struct {
	events []*session.Event
}

func (m *mockEvents) All() iter.Seq[*session.Event] {
	return func(yield func(*session.Event) bool) {
		for _, evt := range m.events {
			if !yield(evt) {
				return
			}
		}
	}
}

func (m *mockEvents) Len() int                 { return len(m.events) }
func (m *mockEvents) At(i int) *session.Event { return m.events[i] }
