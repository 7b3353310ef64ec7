// Package orchestrator turns one line of user input into recorded data and a reply.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/easeaico/lifebot/internal/achievement"
	"github.com/easeaico/lifebot/internal/coaching"
	"github.com/easeaico/lifebot/internal/config"
	"github.com/easeaico/lifebot/internal/intent"
	"github.com/easeaico/lifebot/internal/memory"
	"github.com/easeaico/lifebot/internal/models"
	"github.com/easeaico/lifebot/internal/parser"
	"github.com/easeaico/lifebot/internal/tracker"
	"github.com/easeaico/lifebot/internal/types"
	"github.com/easeaico/lifebot/internal/xp"
)

// Outcome classifies a Response.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeParseFailure  Outcome = "parse_failure"
	OutcomeClarification Outcome = "clarification"
	OutcomeUnknown       Outcome = "unknown"
)

const (
	msgParseFailure  = "입력을 이해하지 못했어요. 다시 말씀해주세요."
	msgUnknownIntent = "알 수 없는 명령입니다."
)

// Result is the outcome of one intent.
type Result struct {
	Intent    intent.Name `json:"intent"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	ExpGained int         `json:"exp_gained"`
	Data      any         `json:"data,omitempty"`
}

// Clarification carries the low-confidence intent back to the caller.
type Clarification struct {
	Intent   string         `json:"intent"`
	Entities map[string]any `json:"entities"`
	Question string         `json:"question"`
}

// Response is everything Handle reports for one input.
type Response struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	Outcome       Outcome        `json:"outcome"`
	Results       []Result       `json:"results,omitempty"`
	ExpGained     int            `json:"exp_gained"`
	Clarification *Clarification `json:"clarification,omitempty"`
}

// IntentParser extracts raw intents from text.
type IntentParser interface {
	Parse(ctx context.Context, text string, history []types.ConversationTurn, memories []types.RetrievedMemory) parser.Result
}

// Replier produces natural language replies.
type Replier interface {
	Rephrase(ctx context.Context, input, result string) string
	Chat(ctx context.Context, text string) (string, error)
}

// Memory records turns and recalls context for the parser.
type Memory interface {
	Remember(ctx context.Context, sessionID, role, content, intentName string) error
	Recall(ctx context.Context, sessionID, query string) (memory.Recall, error)
}

// PeopleRepo stores people and interactions.
type PeopleRepo interface {
	Upsert(ctx context.Context, person types.Person) (types.Person, error)
	GetByName(ctx context.Context, name string) (types.Person, error)
	AddInteraction(ctx context.Context, interaction types.Interaction) (types.Interaction, error)
	Search(ctx context.Context, query string, limit int) ([]types.Person, error)
	SearchInteractions(ctx context.Context, query string, limit int) ([]types.Interaction, error)
}

// JournalRepo stores knowledge, reflections and learning notes.
type JournalRepo interface {
	AddKnowledge(ctx context.Context, entry types.Knowledge) (types.Knowledge, error)
	SearchKnowledge(ctx context.Context, query string, limit int) ([]types.Knowledge, error)
	AddReflection(ctx context.Context, entry types.Reflection) (types.Reflection, error)
	AddLearningLog(ctx context.Context, entry types.LearningLog) (types.LearningLog, error)
}

// Deps are the services Handle dispatches to. Memory and Responder may be nil.
type Deps struct {
	Tracker      *tracker.Service
	XP           *xp.Service
	Achievements *achievement.Evaluator
	Coach        *coaching.Coach
	People       PeopleRepo
	Journal      JournalRepo
	Parser       IntentParser
	Responder    Replier
	Memory       Memory
}

// Options tunes Handle.
type Options struct {
	ConfidenceThreshold float64
	Targets             config.HealthTargets
	Rephrase            bool
	SessionID           string
}

// Orchestrator parses, validates and dispatches user input.
type Orchestrator struct {
	Deps
	opts Options
}

func New(deps Deps, opts Options) *Orchestrator {
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = 0.7
	}
	return &Orchestrator{Deps: deps, opts: opts}
}

// Handle processes text in the default session.
func (o *Orchestrator) Handle(ctx context.Context, text string) Response {
	return o.HandleSession(ctx, o.opts.SessionID, text)
}

// HandleSession processes text and records both sides of the turn in sessionID.
// It never returns an error; failures are reported in the Response.
func (o *Orchestrator) HandleSession(ctx context.Context, sessionID, text string) Response {
	text = strings.TrimSpace(text)
	recall := o.recall(ctx, sessionID, text)

	var resp Response
	var primary intent.Name
	parsed := o.Parser.Parse(ctx, text, recall.History, recall.Related)
	switch parsed.Kind {
	case parser.Failure:
		slog.Warn("parse failed", "error", errString(parsed.Err))
		resp = Response{Outcome: OutcomeParseFailure, Message: msgParseFailure}
	case parser.Fallback:
		primary = intent.NameChat
		reply := strings.TrimSpace(parsed.Reply)
		if reply == "" {
			reply = models.ChatFallback
		}
		resp = aggregate([]Result{{Intent: intent.NameChat, Success: true, Message: reply}})
	default:
		primary = intent.Name(parsed.Intents[0].Intent)
		resp = o.dispatchAll(ctx, text, parsed.Intents)
	}

	o.remember(ctx, sessionID, types.RoleUser, text, string(primary))
	o.remember(ctx, sessionID, types.RoleAssistant, resp.Message, "")
	return resp
}

func (o *Orchestrator) dispatchAll(ctx context.Context, text string, raws []intent.Raw) Response {
	for _, raw := range raws {
		if raw.Confidence < o.opts.ConfidenceThreshold {
			question := intent.ClarificationQuestion(raw)
			return Response{
				Success: true,
				Outcome: OutcomeClarification,
				Message: question,
				Clarification: &Clarification{
					Intent:   raw.Intent,
					Entities: raw.Entities,
					Question: question,
				},
			}
		}
	}

	results := make([]Result, 0, len(raws))
	unknown := 0
	for _, raw := range raws {
		decoded, err := intent.Decode(raw)
		if err != nil {
			var verr *intent.ValidationError
			switch {
			case errors.As(err, &verr):
				results = append(results, Result{Intent: verr.Intent, Message: verr.Message})
			case errors.Is(err, intent.ErrUnknownIntent):
				unknown++
				results = append(results, Result{Intent: intent.Name(raw.Intent), Message: msgUnknownIntent})
			default:
				slog.Error("failed to decode intent", "intent", raw.Intent, "error", err.Error())
				results = append(results, Result{Intent: intent.Name(raw.Intent), Message: msgUnknownIntent})
			}
			continue
		}
		results = append(results, o.dispatch(ctx, text, decoded))
	}

	resp := aggregate(results)
	if unknown == len(results) {
		resp.Outcome = OutcomeUnknown
		return resp
	}
	if o.opts.Rephrase && o.Responder != nil && len(results) == 1 && results[0].Success && results[0].Intent != intent.NameChat {
		resp.Message = o.Responder.Rephrase(ctx, text, resp.Message)
	}
	return resp
}

func (o *Orchestrator) dispatch(ctx context.Context, text string, in intent.Intent) Result {
	switch v := in.(type) {
	case intent.Sleep:
		return o.handleSleep(ctx, v)
	case intent.Workout:
		return o.handleWorkout(ctx, v)
	case intent.Protein:
		return o.handleProtein(ctx, v)
	case intent.Weight:
		return o.handleWeight(ctx, v)
	case intent.Study:
		return o.handleStudy(ctx, v)
	case intent.TaskAdd:
		return o.handleTaskAdd(ctx, v)
	case intent.TaskComplete:
		return o.handleTaskComplete(ctx, v)
	case intent.LearningLog:
		return o.handleLearningLog(ctx, v)
	case intent.Summary:
		return o.Summary(ctx, v.Date)
	case intent.Progress:
		return o.Progress(ctx)
	case intent.Chat:
		return o.handleChat(ctx, text)
	case intent.RememberPerson:
		return o.handleRememberPerson(ctx, v)
	case intent.RememberInteraction:
		return o.handleRememberInteraction(ctx, v)
	case intent.RememberKnowledge:
		return o.handleRememberKnowledge(ctx, v)
	case intent.QueryMemory:
		return o.handleQueryMemory(ctx, v)
	case intent.Reflect:
		return o.handleReflect(ctx, v)
	default:
		return Result{Intent: in.Name(), Message: msgUnknownIntent}
	}
}

// aggregate joins results. A single result is returned verbatim.
func aggregate(results []Result) Response {
	resp := Response{Outcome: OutcomeOK, Success: true, Results: results}
	messages := make([]string, 0, len(results))
	for _, r := range results {
		resp.ExpGained += r.ExpGained
		if !r.Success {
			resp.Success = false
		}
		if r.Message != "" {
			messages = append(messages, r.Message)
		}
	}
	resp.Message = strings.Join(messages, "\n\n")
	return resp
}

func (o *Orchestrator) handleChat(ctx context.Context, text string) Result {
	if o.Responder == nil {
		return Result{Intent: intent.NameChat, Success: true, Message: models.ChatFallback}
	}
	reply, err := o.Responder.Chat(ctx, text)
	if err != nil {
		slog.Warn("failed to generate chat reply", "error", err.Error())
	}
	return Result{Intent: intent.NameChat, Success: true, Message: reply}
}

func (o *Orchestrator) recall(ctx context.Context, sessionID, text string) memory.Recall {
	if o.Memory == nil {
		return memory.Recall{}
	}
	recall, err := o.Memory.Recall(ctx, sessionID, text)
	if err != nil {
		slog.Warn("failed to recall conversation", "error", err.Error())
	}
	return recall
}

func (o *Orchestrator) remember(ctx context.Context, sessionID, role, content, intentName string) {
	if o.Memory == nil || content == "" {
		return
	}
	if err := o.Memory.Remember(ctx, sessionID, role, content, intentName); err != nil {
		slog.Warn("failed to store conversation turn", "role", role, "error", err.Error())
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
