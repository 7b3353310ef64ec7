package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/easeaico/lifebot/internal/intent"
	"github.com/easeaico/lifebot/internal/storage"
	"github.com/easeaico/lifebot/internal/types"
	"github.com/easeaico/lifebot/internal/utils"
)

const (
	searchLimit    = 5
	previewLength  = 100
	queryPeople    = "people"
	queryKnowledge = "knowledge"
	queryMeetings  = "interactions"
)

func (o *Orchestrator) dateOrToday(date string) string {
	if date == "" {
		return o.Tracker.Today()
	}
	return date
}

func (o *Orchestrator) handleLearningLog(ctx context.Context, in intent.LearningLog) Result {
	entry, err := o.Journal.AddLearningLog(ctx, types.LearningLog{
		Date:     o.dateOrToday(in.Date),
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
	})
	if err != nil {
		return failure(intent.NameLearningLog, "저장", err)
	}
	return Result{Intent: intent.NameLearningLog, Success: true, Message: "✓ 학습 기록 완료: " + entry.Title, Data: entry}
}

func (o *Orchestrator) handleRememberPerson(ctx context.Context, in intent.RememberPerson) Result {
	person, err := o.People.Upsert(ctx, types.Person{
		Name:             in.PersonName,
		RelationshipType: in.RelationshipType,
		Tags:             in.Tags,
		Notes:            in.Notes,
	})
	if err != nil {
		return failure(intent.NameRememberPerson, "저장", err)
	}
	return Result{Intent: intent.NameRememberPerson, Success: true, Message: "✓ 인물 정보 저장: " + person.Name, Data: person}
}

func (o *Orchestrator) handleRememberInteraction(ctx context.Context, in intent.RememberInteraction) Result {
	person, err := o.People.GetByName(ctx, in.PersonName)
	if errors.Is(err, storage.ErrNotFound) {
		person, err = o.People.Upsert(ctx, types.Person{Name: in.PersonName})
	}
	if err != nil {
		return failure(intent.NameRememberInteraction, "저장", err)
	}

	interaction, err := o.People.AddInteraction(ctx, types.Interaction{
		PersonID: person.ID,
		Date:     o.dateOrToday(in.Date),
		Type:     in.InteractionType,
		Summary:  in.Summary,
	})
	if err != nil {
		return failure(intent.NameRememberInteraction, "저장", err)
	}
	interaction.PersonName = person.Name
	return Result{
		Intent:  intent.NameRememberInteraction,
		Success: true,
		Message: fmt.Sprintf("✓ %s님과의 상호작용 기록 완료", person.Name),
		Data:    interaction,
	}
}

func (o *Orchestrator) handleRememberKnowledge(ctx context.Context, in intent.RememberKnowledge) Result {
	entry, err := o.Journal.AddKnowledge(ctx, types.Knowledge{
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
	})
	if err != nil {
		return failure(intent.NameRememberKnowledge, "저장", err)
	}
	return Result{Intent: intent.NameRememberKnowledge, Success: true, Message: "✓ 지식 저장: " + entry.Title, Data: entry}
}

func (o *Orchestrator) handleReflect(ctx context.Context, in intent.Reflect) Result {
	entry, err := o.Journal.AddReflection(ctx, types.Reflection{
		Date:    o.dateOrToday(in.Date),
		Topic:   in.Topic,
		Content: in.Content,
		Mood:    in.Mood,
	})
	if err != nil {
		return failure(intent.NameReflect, "저장", err)
	}
	return Result{Intent: intent.NameReflect, Success: true, Message: "✓ 회고 기록 완료", Data: entry}
}

// handleQueryMemory runs a LIKE search over the requested memory kinds.
// An empty or unrecognized query type searches all of them.
func (o *Orchestrator) handleQueryMemory(ctx context.Context, in intent.QueryMemory) Result {
	kind := strings.ToLower(strings.TrimSpace(in.QueryType))
	switch kind {
	case queryPeople, queryKnowledge, queryMeetings:
	default:
		kind = ""
	}
	wants := func(k string) bool { return kind == "" || kind == k }

	var sections []string
	if wants(queryPeople) {
		people, err := o.People.Search(ctx, in.Query, searchLimit)
		if err != nil {
			return failure(intent.NameQueryMemory, "검색", err)
		}
		if len(people) > 0 {
			lines := []string{"👥 사람:"}
			for _, p := range people {
				line := "  - " + p.Name
				if p.RelationshipType != "" {
					line += " (" + p.RelationshipType + ")"
				}
				if p.Notes != "" {
					line += ": " + utils.TruncateRunes(p.Notes, previewLength)
				}
				lines = append(lines, line)
			}
			sections = append(sections, strings.Join(lines, "\n"))
		}
	}
	if wants(queryKnowledge) {
		entries, err := o.Journal.SearchKnowledge(ctx, in.Query, searchLimit)
		if err != nil {
			return failure(intent.NameQueryMemory, "검색", err)
		}
		if len(entries) > 0 {
			lines := []string{"📚 지식:"}
			for _, k := range entries {
				lines = append(lines, fmt.Sprintf("  - %s: %s", k.Title, utils.TruncateRunes(k.Content, previewLength)))
			}
			sections = append(sections, strings.Join(lines, "\n"))
		}
	}
	if wants(queryMeetings) {
		interactions, err := o.People.SearchInteractions(ctx, in.Query, searchLimit)
		if err != nil {
			return failure(intent.NameQueryMemory, "검색", err)
		}
		if len(interactions) > 0 {
			lines := []string{"💬 상호작용:"}
			for _, it := range interactions {
				lines = append(lines, fmt.Sprintf("  - %s %s: %s", it.Date, it.PersonName, utils.TruncateRunes(it.Summary, previewLength)))
			}
			sections = append(sections, strings.Join(lines, "\n"))
		}
	}

	if len(sections) == 0 {
		return Result{Intent: intent.NameQueryMemory, Success: true, Message: fmt.Sprintf("'%s'에 대한 기록이 없습니다.", in.Query)}
	}
	message := fmt.Sprintf("🔍 '%s' 검색 결과:\n", in.Query) + strings.Join(sections, "\n\n")
	return Result{Intent: intent.NameQueryMemory, Success: true, Message: message}
}
