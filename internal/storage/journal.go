package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/easeaico/lifebot/internal/types"
)

// knowledgeModel maps to the knowledge_entries table.
type knowledgeModel struct {
	ID        int
	Title     string `gorm:"size:255;not null"`
	Content   string `gorm:"type:text;not null"`
	Category  string `gorm:"size:64"`
	Source    string `gorm:"size:255"`
	Tags      datatypes.JSON
	CreatedAt time.Time
}

func (knowledgeModel) TableName() string {
	return "knowledge_entries"
}

// reflectionModel maps to the reflections table.
type reflectionModel struct {
	ID        int
	Date      string `gorm:"size:10;index;not null"`
	Topic     string `gorm:"size:128"`
	Content   string `gorm:"type:text;not null"`
	Mood      string `gorm:"size:32"`
	CreatedAt time.Time
}

func (reflectionModel) TableName() string {
	return "reflections"
}

// learningLogModel maps to the learning_logs table.
type learningLogModel struct {
	ID        int
	Date      string `gorm:"size:10;index;not null"`
	Title     string `gorm:"size:255;not null"`
	Content   string `gorm:"type:text"`
	Category  string `gorm:"size:64"`
	CreatedAt time.Time
}

func (learningLogModel) TableName() string {
	return "learning_logs"
}

// JournalRepo accesses knowledge entries, reflections and learning logs.
type JournalRepo struct {
	db *gorm.DB
}

// AddKnowledge stores a knowledge entry.
func (r *JournalRepo) AddKnowledge(ctx context.Context, entry types.Knowledge) (types.Knowledge, error) {
	tags, err := encodeTags(entry.Tags)
	if err != nil {
		return types.Knowledge{}, err
	}
	record := knowledgeModel{
		Title:    entry.Title,
		Content:  entry.Content,
		Category: entry.Category,
		Source:   entry.Source,
		Tags:     tags,
	}
	if err := conn(ctx, r.db).Create(&record).Error; err != nil {
		return types.Knowledge{}, fmt.Errorf("failed to insert knowledge: %w", translate(err))
	}
	entry.ID = record.ID
	entry.CreatedAt = record.CreatedAt
	return entry, nil
}

// SearchKnowledge matches title or content against query, newest first.
func (r *JournalRepo) SearchKnowledge(ctx context.Context, query string, limit int) ([]types.Knowledge, error) {
	like := "%" + query + "%"
	var records []knowledgeModel
	if err := conn(ctx, r.db).
		Where("title LIKE ? OR content LIKE ?", like, like).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to search knowledge: %w", err)
	}
	results := make([]types.Knowledge, 0, len(records))
	for _, record := range records {
		tags, err := decodeTags(record.Tags)
		if err != nil {
			return nil, err
		}
		results = append(results, types.Knowledge{
			ID:        record.ID,
			Title:     record.Title,
			Content:   record.Content,
			Category:  record.Category,
			Source:    record.Source,
			Tags:      tags,
			CreatedAt: record.CreatedAt,
		})
	}
	return results, nil
}

// AddReflection stores a journal entry.
func (r *JournalRepo) AddReflection(ctx context.Context, entry types.Reflection) (types.Reflection, error) {
	record := reflectionModel{
		Date:    entry.Date,
		Topic:   entry.Topic,
		Content: entry.Content,
		Mood:    entry.Mood,
	}
	if err := conn(ctx, r.db).Create(&record).Error; err != nil {
		return types.Reflection{}, fmt.Errorf("failed to insert reflection: %w", translate(err))
	}
	entry.ID = record.ID
	return entry, nil
}

// AddLearningLog stores a learning note.
func (r *JournalRepo) AddLearningLog(ctx context.Context, entry types.LearningLog) (types.LearningLog, error) {
	record := learningLogModel{
		Date:     entry.Date,
		Title:    entry.Title,
		Content:  entry.Content,
		Category: entry.Category,
	}
	if err := conn(ctx, r.db).Create(&record).Error; err != nil {
		return types.LearningLog{}, fmt.Errorf("failed to insert learning log: %w", translate(err))
	}
	entry.ID = record.ID
	return entry, nil
}
