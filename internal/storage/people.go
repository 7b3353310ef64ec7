package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/lifebot/internal/types"
)

// personModel maps to the people table.
type personModel struct {
	ID               int
	Name             string `gorm:"size:128;uniqueIndex;not null"`
	RelationshipType string `gorm:"size:64"`
	Tags             datatypes.JSON
	Notes            string `gorm:"type:text"`
	LastContact      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (personModel) TableName() string {
	return "people"
}

// interactionModel maps to the interactions table.
type interactionModel struct {
	ID        int
	PersonID  int    `gorm:"index;not null"`
	Date      string `gorm:"size:10;not null"`
	Type      string `gorm:"size:32;default:other"`
	Summary   string `gorm:"type:text"`
	CreatedAt time.Time
}

func (interactionModel) TableName() string {
	return "interactions"
}

// PeopleRepo accesses people and interactions.
type PeopleRepo struct {
	db *gorm.DB
}

// Upsert inserts a person by name or updates the supplied fields of an existing one.
func (r *PeopleRepo) Upsert(ctx context.Context, person types.Person) (types.Person, error) {
	tags, err := encodeTags(person.Tags)
	if err != nil {
		return types.Person{}, err
	}
	record := personModel{
		Name:             person.Name,
		RelationshipType: person.RelationshipType,
		Tags:             tags,
		Notes:            person.Notes,
	}

	columns := []string{"updated_at"}
	if person.RelationshipType != "" {
		columns = append(columns, "relationship_type")
	}
	if len(person.Tags) > 0 {
		columns = append(columns, "tags")
	}
	if person.Notes != "" {
		columns = append(columns, "notes")
	}

	db := conn(ctx, r.db)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&record).Error; err != nil {
		return types.Person{}, fmt.Errorf("failed to upsert person %q: %w", person.Name, translate(err))
	}
	return r.GetByName(ctx, person.Name)
}

// GetByName returns the person called name.
func (r *PeopleRepo) GetByName(ctx context.Context, name string) (types.Person, error) {
	var record personModel
	if err := conn(ctx, r.db).Where("name = ?", name).Take(&record).Error; err != nil {
		return types.Person{}, fmt.Errorf("failed to get person %q: %w", name, translate(err))
	}
	return personFromModel(record)
}

// AddInteraction records an interaction and refreshes the person's last contact.
func (r *PeopleRepo) AddInteraction(ctx context.Context, interaction types.Interaction) (types.Interaction, error) {
	if interaction.Type == "" {
		interaction.Type = "other"
	}
	record := interactionModel{
		PersonID: interaction.PersonID,
		Date:     interaction.Date,
		Type:     interaction.Type,
		Summary:  interaction.Summary,
	}
	db := conn(ctx, r.db)
	if err := db.Create(&record).Error; err != nil {
		return types.Interaction{}, fmt.Errorf("failed to insert interaction: %w", translate(err))
	}
	if err := db.Model(&personModel{}).
		Where("id = ?", interaction.PersonID).
		Update("last_contact", time.Now().UTC()).Error; err != nil {
		return types.Interaction{}, fmt.Errorf("failed to update last contact: %w", err)
	}
	interaction.ID = record.ID
	return interaction, nil
}

// Search matches name, notes or relationship against query.
func (r *PeopleRepo) Search(ctx context.Context, query string, limit int) ([]types.Person, error) {
	like := "%" + query + "%"
	var records []personModel
	if err := conn(ctx, r.db).
		Where("name LIKE ? OR notes LIKE ? OR relationship_type LIKE ?", like, like, like).
		Order("updated_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to search people: %w", err)
	}
	results := make([]types.Person, 0, len(records))
	for _, record := range records {
		person, err := personFromModel(record)
		if err != nil {
			return nil, err
		}
		results = append(results, person)
	}
	return results, nil
}

// SearchInteractions matches interaction summaries or the person's name against query.
func (r *PeopleRepo) SearchInteractions(ctx context.Context, query string, limit int) ([]types.Interaction, error) {
	like := "%" + query + "%"
	var rows []struct {
		ID         int
		PersonID   int
		PersonName string
		Date       string
		Type       string
		Summary    string
	}
	if err := conn(ctx, r.db).
		Table("interactions").
		Select("interactions.id, interactions.person_id, people.name AS person_name, interactions.date, interactions.type, interactions.summary").
		Joins("JOIN people ON people.id = interactions.person_id").
		Where("interactions.summary LIKE ? OR people.name LIKE ?", like, like).
		Order("interactions.date DESC, interactions.id DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search interactions: %w", err)
	}
	results := make([]types.Interaction, 0, len(rows))
	for _, row := range rows {
		results = append(results, types.Interaction{
			ID:         row.ID,
			PersonID:   row.PersonID,
			PersonName: row.PersonName,
			Date:       row.Date,
			Type:       row.Type,
			Summary:    row.Summary,
		})
	}
	return results, nil
}

func encodeTags(tags []string) (datatypes.JSON, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func decodeTags(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}

func personFromModel(model personModel) (types.Person, error) {
	tags, err := decodeTags(model.Tags)
	if err != nil {
		return types.Person{}, err
	}
	return types.Person{
		ID:               model.ID,
		Name:             model.Name,
		RelationshipType: model.RelationshipType,
		Tags:             tags,
		Notes:            model.Notes,
		LastContact:      model.LastContact,
	}, nil
}
