// Package intent defines the typed commands decoded from parser output.
package intent

// Name is the fixed intent vocabulary shared with the parser prompt.
type Name string

const (
	NameSleep               Name = "sleep"
	NameWorkout             Name = "workout"
	NameProtein             Name = "protein"
	NameWeight              Name = "weight"
	NameStudy               Name = "study"
	NameTaskAdd             Name = "task_add"
	NameTaskComplete        Name = "task_complete"
	NameLearningLog         Name = "learning_log"
	NameSummary             Name = "summary"
	NameProgress            Name = "progress"
	NameChat                Name = "chat"
	NameRememberPerson      Name = "remember_person"
	NameRememberInteraction Name = "remember_interaction"
	NameRememberKnowledge   Name = "remember_knowledge"
	NameQueryMemory         Name = "query_memory"
	NameReflect             Name = "reflect"
)

// Names lists every recognized intent in prompt order.
var Names = []Name{
	NameSleep, NameWorkout, NameProtein, NameWeight, NameStudy,
	NameTaskAdd, NameTaskComplete, NameLearningLog, NameSummary, NameProgress,
	NameChat, NameRememberPerson, NameRememberInteraction, NameRememberKnowledge,
	NameQueryMemory, NameReflect,
}

// Raw is one parser output before validation.
type Raw struct {
	Intent     string         `json:"intent"`
	Entities   map[string]any `json:"entities"`
	Confidence float64        `json:"confidence"`
}

// Intent is a validated command. The concrete type selects the handler.
type Intent interface {
	Name() Name
}

type Sleep struct {
	Date  string
	Hours float64
}

type Workout struct {
	Date    string
	Minutes int
}

type Protein struct {
	Date  string
	Grams float64
}

type Weight struct {
	Date string
	Kg   float64
}

type Study struct {
	Date  string
	Hours float64
}

type TaskAdd struct {
	Title    string
	DueDate  string
	Priority string
}

// TaskComplete targets a task by ID, or by title when ID is zero.
type TaskComplete struct {
	ID    int
	Title string
}

type LearningLog struct {
	Date     string
	Title    string
	Content  string
	Category string
}

type Summary struct {
	Date string
}

type Progress struct{}

type Chat struct{}

type RememberPerson struct {
	PersonName       string
	RelationshipType string
	Tags             []string
	Notes            string
}

type RememberInteraction struct {
	Date            string
	PersonName      string
	InteractionType string
	Summary         string
}

type RememberKnowledge struct {
	Title    string
	Content  string
	Category string
}

// QueryMemory searches stored memories. An empty QueryType searches everything.
type QueryMemory struct {
	Query     string
	QueryType string
}

type Reflect struct {
	Date    string
	Content string
	Topic   string
	Mood    string
}

func (Sleep) Name() Name               { return NameSleep }
func (Workout) Name() Name             { return NameWorkout }
func (Protein) Name() Name             { return NameProtein }
func (Weight) Name() Name              { return NameWeight }
func (Study) Name() Name               { return NameStudy }
func (TaskAdd) Name() Name             { return NameTaskAdd }
func (TaskComplete) Name() Name        { return NameTaskComplete }
func (LearningLog) Name() Name         { return NameLearningLog }
func (Summary) Name() Name             { return NameSummary }
func (Progress) Name() Name            { return NameProgress }
func (Chat) Name() Name                { return NameChat }
func (RememberPerson) Name() Name      { return NameRememberPerson }
func (RememberInteraction) Name() Name { return NameRememberInteraction }
func (RememberKnowledge) Name() Name   { return NameRememberKnowledge }
func (QueryMemory) Name() Name         { return NameQueryMemory }
func (Reflect) Name() Name             { return NameReflect }
