package memory

import (
	"context"
	"log/slog"
	"strings"

	adkmemory "google.golang.org/adk/memory"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/easeaico/lifebot/internal/types"
	"github.com/easeaico/lifebot/internal/utils"
)

// ConversationRepo persists turns and finds similar ones.
type ConversationRepo interface {
	AddTurn(ctx context.Context, turn types.ConversationTurn) error
	Recent(ctx context.Context, sessionID string, limit int) ([]types.ConversationTurn, error)
	SearchSimilar(ctx context.Context, embedding []float32, topK int, threshold float64) ([]types.RetrievedMemory, error)
}

// Options bounds what Recall returns.
type Options struct {
	HistoryLimit int
	TopK         int
	Threshold    float64
}

// Recall is the context handed to the parser for one input.
type Recall struct {
	History []types.ConversationTurn
	Related []types.RetrievedMemory
}

// Service records turns and recalls recent and similar ones. Without an
// embedder it keeps history only. It also serves as the ADK memory.Service.
type Service struct {
	embedder Embedder
	repo     ConversationRepo
	opts     Options
}

var _ adkmemory.Service = (*Service)(nil)

func NewService(embedder Embedder, repo ConversationRepo, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 0.7
	}
	return &Service{embedder: embedder, repo: repo, opts: opts}
}

// Remember stores one turn. User turns are embedded when an embedder is set;
// an embedding failure stores the turn without a vector.
func (s *Service) Remember(ctx context.Context, sessionID, role, content, intentName string) error {
	if s == nil || s.repo == nil || strings.TrimSpace(content) == "" {
		return nil
	}

	turn := types.ConversationTurn{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Intent:    intentName,
	}
	if s.embedder != nil && role == types.RoleUser {
		vec, err := s.embedder.EmbedDocument(ctx, content)
		if err != nil {
			slog.Warn("failed to embed conversation turn", "error", err.Error())
		} else {
			turn.Embedding = vec
		}
	}
	return s.repo.AddTurn(ctx, turn)
}

// Recall returns the latest turns of sessionID and, with an embedder, the
// stored user turns most similar to query that are not already in History.
func (s *Service) Recall(ctx context.Context, sessionID, query string) (Recall, error) {
	var out Recall
	if s == nil || s.repo == nil {
		return out, nil
	}

	if s.opts.HistoryLimit > 0 {
		history, err := s.repo.Recent(ctx, sessionID, s.opts.HistoryLimit)
		if err != nil {
			return out, err
		}
		out.History = history
	}

	related, err := s.similar(ctx, query)
	if err != nil {
		return out, err
	}
	seen := make(map[string]bool, len(out.History))
	for _, turn := range out.History {
		seen[turn.Content] = true
	}
	for _, mem := range related {
		if !seen[mem.Content] {
			out.Related = append(out.Related, mem)
		}
	}
	return out, nil
}

func (s *Service) similar(ctx context.Context, query string) ([]types.RetrievedMemory, error) {
	if s.embedder == nil || strings.TrimSpace(query) == "" {
		return nil, nil
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.repo.SearchSimilar(ctx, vec, s.opts.TopK, s.opts.Threshold)
}

// AddSession stores the latest event of sess as a turn.
func (s *Service) AddSession(ctx context.Context, sess session.Session) error {
	events := sess.Events()
	if events.Len() == 0 {
		return nil
	}
	event := events.At(events.Len() - 1)
	if event == nil || event.Content == nil {
		return nil
	}

	role := types.RoleAssistant
	if event.Content.Role == string(genai.RoleUser) {
		role = types.RoleUser
	}
	return s.Remember(ctx, sess.ID(), role, utils.ExtractContentText(event.Content), "")
}

// Search returns stored user turns similar to req.Query.
func (s *Service) Search(ctx context.Context, req *adkmemory.SearchRequest) (*adkmemory.SearchResponse, error) {
	if req == nil || req.Query == "" {
		return &adkmemory.SearchResponse{}, nil
	}
	memories, err := s.similar(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	return &adkmemory.SearchResponse{Memories: toEntries(memories)}, nil
}

func toEntries(memories []types.RetrievedMemory) []adkmemory.Entry {
	if len(memories) == 0 {
		return nil
	}
	results := make([]adkmemory.Entry, 0, len(memories))
	for _, m := range memories {
		var role genai.Role = genai.RoleUser
		if m.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		results = append(results, adkmemory.Entry{
			Content:   genai.NewContentFromText(m.Content, role),
			Author:    m.Role,
			Timestamp: m.CreatedAt,
		})
	}
	return results
}
