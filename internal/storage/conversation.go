package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/easeaico/lifebot/internal/types"
)

// conversationModel maps to the conversation_memories table.
type conversationModel struct {
	ID        int
	SessionID string `gorm:"size:64;index"`
	Role      string `gorm:"size:16;not null"`
	Content   string `gorm:"type:text;not null"`
	Intent    string `gorm:"size:32"`
	// Embedding is only populated on PostgreSQL with pgvector.
	Embedding *pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time
}

func (conversationModel) TableName() string {
	return "conversation_memories"
}

// ConversationRepo stores chat turns for history and retrieval.
type ConversationRepo struct {
	db *gorm.DB
}

// AddTurn inserts a chat turn.
func (r *ConversationRepo) AddTurn(ctx context.Context, turn types.ConversationTurn) error {
	var vector *pgvector.Vector
	if len(turn.Embedding) > 0 {
		v := pgvector.NewVector(turn.Embedding)
		vector = &v
	}
	record := conversationModel{
		SessionID: turn.SessionID,
		Role:      turn.Role,
		Content:   turn.Content,
		Intent:    turn.Intent,
		Embedding: vector,
	}
	if err := conn(ctx, r.db).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert conversation turn: %w", translate(err))
	}
	return nil
}

// Recent returns the latest turns of a session, oldest first.
func (r *ConversationRepo) Recent(ctx context.Context, sessionID string, limit int) ([]types.ConversationTurn, error) {
	query := conn(ctx, r.db).Omit("embedding").Order("created_at DESC, id DESC").Limit(limit)
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}

	var records []conversationModel
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query conversation turns: %w", err)
	}

	results := make([]types.ConversationTurn, 0, len(records))
	for _, record := range records {
		results = append(results, types.ConversationTurn{
			ID:        record.ID,
			SessionID: record.SessionID,
			Role:      record.Role,
			Content:   record.Content,
			Intent:    record.Intent,
			CreatedAt: record.CreatedAt,
		})
	}

	// Oldest -> newest
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

// SearchSimilar returns user turns whose cosine similarity to embedding exceeds threshold.
// It requires PostgreSQL with pgvector.
func (r *ConversationRepo) SearchSimilar(ctx context.Context, embedding []float32, topK int, threshold float64) ([]types.RetrievedMemory, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	var results []types.RetrievedMemory
	if err := conn(ctx, r.db).
		Raw(`
		SELECT role, content, created_at,
		       1 - (embedding <=> ?) AS similarity
		FROM conversation_memories
		WHERE embedding IS NOT NULL AND role = ? AND 1 - (embedding <=> ?) > ?
		ORDER BY embedding <=> ?
		LIMIT ?`,
			pgvector.NewVector(embedding), types.RoleUser, pgvector.NewVector(embedding), threshold, pgvector.NewVector(embedding), topK).
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar turns: %w", err)
	}
	return results, nil
}
