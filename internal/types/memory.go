package types

import "time"

// Person is someone the user wants to remember.
type Person struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	RelationshipType string     `json:"relationship_type,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	LastContact      *time.Time `json:"last_contact,omitempty"`
}

// Interaction is a dated encounter with a person.
type Interaction struct {
	ID         int    `json:"id"`
	PersonID   int    `json:"person_id"`
	PersonName string `json:"person_name,omitempty"`
	Date       string `json:"date"`
	Type       string `json:"type"`
	Summary    string `json:"summary"`
}

// Knowledge is a saved fact or note.
type Knowledge struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Source    string    `json:"source,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Reflection is a journal entry.
type Reflection struct {
	ID      int    `json:"id"`
	Date    string `json:"date"`
	Topic   string `json:"topic,omitempty"`
	Content string `json:"content"`
	Mood    string `json:"mood,omitempty"`
}

// LearningLog records something studied.
type LearningLog struct {
	ID       int    `json:"id"`
	Date     string `json:"date"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Category string `json:"category,omitempty"`
}

const (
	// RoleUser marks a user turn in conversation memory.
	RoleUser = "user"
	// RoleAssistant marks a bot turn.
	RoleAssistant = "assistant"
)

// ConversationTurn is one stored chat message.
type ConversationTurn struct {
	ID        int       `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// RetrievedMemory is a conversation turn returned by similarity search.
type RetrievedMemory struct {
	Content    string    `json:"content"`
	Role       string    `json:"role"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at"`
}
