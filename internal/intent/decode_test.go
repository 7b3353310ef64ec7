package intent

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want Intent
	}{
		{
			name: "sleep with date",
			raw:  Raw{Intent: "sleep", Entities: map[string]any{"sleep_hours": 7.5, "date": "2026-03-09"}},
			want: Sleep{Date: "2026-03-09", Hours: 7.5},
		},
		{
			name: "numeric string",
			raw:  Raw{Intent: "Sleep", Entities: map[string]any{"sleep_hours": " 6.5 "}},
			want: Sleep{Hours: 6.5},
		},
		{
			name: "workout rounds minutes",
			raw:  Raw{Intent: "workout", Entities: map[string]any{"workout_minutes": 29.6}},
			want: Workout{Minutes: 30},
		},
		{
			name: "json number",
			raw:  Raw{Intent: "protein", Entities: map[string]any{"protein_grams": json.Number("120")}},
			want: Protein{Grams: 120},
		},
		{
			name: "task add falls back to date for due",
			raw:  Raw{Intent: "task_add", Entities: map[string]any{"task_title": "보고서", "date": "2026-03-12", "priority": "high"}},
			want: TaskAdd{Title: "보고서", DueDate: "2026-03-12", Priority: "high"},
		},
		{
			name: "task complete by id",
			raw:  Raw{Intent: "task_complete", Entities: map[string]any{"task_id": 3.0, "task_title": "무시됨"}},
			want: TaskComplete{ID: 3},
		},
		{
			name: "task complete by title",
			raw:  Raw{Intent: "task_complete", Entities: map[string]any{"task_title": "장보기"}},
			want: TaskComplete{Title: "장보기"},
		},
		{
			name: "person with tag list",
			raw:  Raw{Intent: "remember_person", Entities: map[string]any{"person_name": "민수", "tags": []any{"친구", " 대학 "}}},
			want: RememberPerson{PersonName: "민수", Tags: []string{"친구", "대학"}},
		},
		{
			name: "person with comma tags",
			raw:  Raw{Intent: "remember_person", Entities: map[string]any{"person_name": "지연", "tags": "회사, 동료"}},
			want: RememberPerson{PersonName: "지연", Tags: []string{"회사", "동료"}},
		},
		{
			name: "progress without entities",
			raw:  Raw{Intent: "progress"},
			want: Progress{},
		},
		{
			name: "query memory",
			raw:  Raw{Intent: "query_memory", Entities: map[string]any{"query": "민수", "query_type": "people"}},
			want: QueryMemory{Query: "민수", QueryType: "people"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeValidationErrors(t *testing.T) {
	tests := []struct {
		raw     Raw
		message string
	}{
		{Raw{Intent: "sleep"}, "수면 시간을 알 수 없습니다."},
		{Raw{Intent: "sleep", Entities: map[string]any{"sleep_hours": "많이"}}, "수면 시간을 알 수 없습니다."},
		{Raw{Intent: "sleep", Entities: map[string]any{"sleep_hours": "NaN"}}, "수면 시간을 알 수 없습니다."},
		{Raw{Intent: "sleep", Entities: map[string]any{"sleep_hours": "Inf"}}, "수면 시간을 알 수 없습니다."},
		{Raw{Intent: "protein", Entities: map[string]any{"protein_grams": "1e400"}}, "단백질 섭취량을 알 수 없습니다."},
		{Raw{Intent: "weight", Entities: map[string]any{"weight_kg": math.NaN()}}, "체중을 알 수 없습니다."},
		{Raw{Intent: "workout", Entities: map[string]any{"workout_minutes": math.Inf(-1)}}, "운동 시간을 알 수 없습니다."},
		{Raw{Intent: "workout", Entities: map[string]any{}}, "운동 시간을 알 수 없습니다."},
		{Raw{Intent: "task_add", Entities: map[string]any{"task_title": "  "}}, "할일 제목을 알 수 없습니다."},
		{Raw{Intent: "task_complete", Entities: map[string]any{"task_id": -1}}, "할일 ID를 알 수 없습니다."},
		{Raw{Intent: "remember_knowledge", Entities: map[string]any{"title": "제목만"}}, "지식 제목과 내용이 필요합니다."},
		{Raw{Intent: "reflect"}, "회고 내용을 알 수 없습니다."},
	}
	for _, tt := range tests {
		_, err := Decode(tt.raw)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "intent %s: expected ValidationError, got %v", tt.raw.Intent, err)
		assert.Equal(t, tt.message, verr.Message)
		assert.ErrorIs(t, err, ErrMissingEntity)
	}
}

func TestDecodeBadDate(t *testing.T) {
	_, err := Decode(Raw{Intent: "sleep", Entities: map[string]any{"sleep_hours": 7, "date": "어제"}})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "date", verr.Field)
	assert.False(t, errors.Is(err, ErrMissingEntity))
}

func TestDecodeUnknownIntent(t *testing.T) {
	_, err := Decode(Raw{Intent: "dance"})
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

func TestClarificationQuestion(t *testing.T) {
	assert.Equal(t, "어떤 할일인가요?", ClarificationQuestion(Raw{Intent: "task_add"}))
	assert.Equal(t, "몇 시간 주무셨나요?", ClarificationQuestion(Raw{Intent: "sleep", Entities: map[string]any{"sleep_hours": ""}}))
	assert.Equal(t, "어떤 할일을 완료하셨나요? (번호 또는 제목)", ClarificationQuestion(Raw{Intent: "task_complete"}))
	assert.Equal(t, defaultQuestion, ClarificationQuestion(Raw{Intent: "sleep", Entities: map[string]any{"sleep_hours": 7}}))
	assert.Equal(t, defaultQuestion, ClarificationQuestion(Raw{Intent: "unknown"}))
}

func TestNamesCoverDecode(t *testing.T) {
	for _, name := range Names {
		_, err := Decode(Raw{Intent: string(name)})
		assert.False(t, errors.Is(err, ErrUnknownIntent), "%s should be recognized", name)
	}
}
