package intent

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMissingEntity marks a ValidationError caused by an absent required entity.
var ErrMissingEntity = errors.New("missing required entity")

// ErrUnknownIntent is returned by Decode for names outside the vocabulary.
var ErrUnknownIntent = errors.New("unknown intent")

// ValidationError rejects one intent. Message is shown to the user as is.
type ValidationError struct {
	Intent  Name
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s intent: %s: %s", e.Intent, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Field == "date" {
		return nil
	}
	return ErrMissingEntity
}

func missing(name Name, field, message string) error {
	return &ValidationError{Intent: name, Field: field, Message: message}
}

// Decode validates raw and returns its typed intent.
func Decode(raw Raw) (Intent, error) {
	name := Name(strings.ToLower(strings.TrimSpace(raw.Intent)))
	e := entities(raw.Entities)
	if e == nil {
		e = entities{}
	}

	date, err := e.date(name)
	if err != nil {
		return nil, err
	}

	switch name {
	case NameSleep:
		hours, ok := e.number("sleep_hours")
		if !ok {
			return nil, missing(name, "sleep_hours", "수면 시간을 알 수 없습니다.")
		}
		return Sleep{Date: date, Hours: hours}, nil

	case NameWorkout:
		minutes, ok := e.number("workout_minutes")
		if !ok {
			return nil, missing(name, "workout_minutes", "운동 시간을 알 수 없습니다.")
		}
		return Workout{Date: date, Minutes: int(math.Round(minutes))}, nil

	case NameProtein:
		grams, ok := e.number("protein_grams")
		if !ok {
			return nil, missing(name, "protein_grams", "단백질 섭취량을 알 수 없습니다.")
		}
		return Protein{Date: date, Grams: grams}, nil

	case NameWeight:
		kg, ok := e.number("weight_kg")
		if !ok {
			return nil, missing(name, "weight_kg", "체중을 알 수 없습니다.")
		}
		return Weight{Date: date, Kg: kg}, nil

	case NameStudy:
		hours, ok := e.number("study_hours")
		if !ok {
			return nil, missing(name, "study_hours", "공부 시간을 알 수 없습니다.")
		}
		return Study{Date: date, Hours: hours}, nil

	case NameTaskAdd:
		title := e.str("task_title")
		if title == "" {
			return nil, missing(name, "task_title", "할일 제목을 알 수 없습니다.")
		}
		due := e.str("due_date")
		if due == "" {
			due = date
		}
		return TaskAdd{Title: title, DueDate: due, Priority: e.str("priority")}, nil

	case NameTaskComplete:
		if id, ok := e.number("task_id"); ok && id > 0 {
			return TaskComplete{ID: int(id)}, nil
		}
		if title := e.str("task_title"); title != "" {
			return TaskComplete{Title: title}, nil
		}
		return nil, missing(name, "task_id", "할일 ID를 알 수 없습니다.")

	case NameLearningLog:
		title := e.str("learning_title")
		if title == "" {
			return nil, missing(name, "learning_title", "학습 제목을 알 수 없습니다.")
		}
		return LearningLog{Date: date, Title: title, Content: e.str("learning_content"), Category: e.str("category")}, nil

	case NameSummary:
		return Summary{Date: date}, nil

	case NameProgress:
		return Progress{}, nil

	case NameChat:
		return Chat{}, nil

	case NameRememberPerson:
		person := e.str("person_name")
		if person == "" {
			return nil, missing(name, "person_name", "인물 이름을 알 수 없습니다.")
		}
		return RememberPerson{
			PersonName:       person,
			RelationshipType: e.str("relationship_type"),
			Tags:             e.list("tags"),
			Notes:            e.str("notes"),
		}, nil

	case NameRememberInteraction:
		person := e.str("person_name")
		if person == "" {
			return nil, missing(name, "person_name", "인물 이름을 알 수 없습니다.")
		}
		summary := e.str("summary")
		if summary == "" {
			return nil, missing(name, "summary", "상호작용 내용을 알 수 없습니다.")
		}
		return RememberInteraction{Date: date, PersonName: person, InteractionType: e.str("interaction_type"), Summary: summary}, nil

	case NameRememberKnowledge:
		title, content := e.str("title"), e.str("content")
		if title == "" || content == "" {
			return nil, missing(name, "content", "지식 제목과 내용이 필요합니다.")
		}
		return RememberKnowledge{Title: title, Content: content, Category: e.str("category")}, nil

	case NameQueryMemory:
		query := e.str("query")
		if query == "" {
			return nil, missing(name, "query", "검색어를 알 수 없습니다.")
		}
		return QueryMemory{Query: query, QueryType: e.str("query_type")}, nil

	case NameReflect:
		content := e.str("content")
		if content == "" {
			return nil, missing(name, "content", "회고 내용을 알 수 없습니다.")
		}
		return Reflect{Date: date, Content: content, Topic: e.str("topic"), Mood: e.str("mood")}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, raw.Intent)
	}
}
