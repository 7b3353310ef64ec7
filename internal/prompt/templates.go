// Package prompt renders the system prompts sent to the LLM.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/easeaico/lifebot/internal/types"
)

const parserTemplateText = `당신은 한국어 건강/할일/메모리 관리 데이터 파서입니다.

**현재 시간**: {{.Now}} ({{.Weekday}})
**오늘 날짜**: {{.Today}}

**역할**: 사용자 입력을 분석하여 의도(intent)와 엔티티를 추출하고 record_intents 함수를 호출합니다.
함수를 호출할 수 없으면 같은 구조의 순수 JSON만 출력하세요.

**가능한 의도**:
- sleep: 수면 기록 (sleep_hours 숫자)
- workout: 운동 기록 (workout_minutes 숫자, 시간 단위는 분으로 변환)
- study: 공부 시간 기록 (study_hours 숫자)
- protein: 단백질 섭취 (protein_grams 숫자)
- weight: 체중 기록 (weight_kg 숫자)
- task_add: 할일 추가 (task_title, due_date 선택, priority 선택)
- task_complete: 할일 완료 (task_id 또는 task_title)
- learning_log: 학습 내용 기록 (learning_title, learning_content, category 선택)
- remember_person: 사람 정보 저장 (person_name, relationship_type, tags 리스트, notes)
- remember_interaction: 상호작용 기록 (person_name, interaction_type, summary)
- remember_knowledge: 지식 저장 (title, content, category)
- query_memory: 메모리 검색 (query, query_type: people/knowledge/interactions)
- reflect: 회고/성찰 (content, topic, mood)
- summary: 하루 요약 조회
- progress: 레벨/경험치 진행도 조회
- chat: 일반 대화

**규칙**:
- 날짜는 모두 YYYY-MM-DD 형식의 date 엔티티로 넣으세요. "어제", "그제" 등은 오늘 날짜 기준으로 계산합니다.
- "지금", "현재", "지금까지"는 위의 현재 시간 기준으로 계산합니다.
- 여러 의도가 있으면 intents 배열에 순서대로 모두 넣으세요.
- priority는 반드시 'low', 'normal', 'high', 'urgent' 중 하나이며, 약속/이벤트는 task_add로 처리합니다.
- 각 의도에 0~1 사이의 confidence를 넣으세요. 필요한 값이 불분명하면 낮게 주세요.

**응답 형식**:
{"intents": [{"intent": "sleep", "entities": {"sleep_hours": 7, "date": "{{.Today}}"}, "confidence": 0.95}]}
{{- if .Memories}}

**관련 과거 대화**:
{{- range .Memories}}
- ({{.Role}}) {{.Content}}
{{- end}}
{{- end}}`

const rephraseTemplateText = `건강/할일 관리 데이터 응답 시스템.
{{- if .UserName}}
사용자 이름: {{.UserName}}
{{- end}}

**응답 규칙**:
- 처리 결과의 숫자와 사실을 바꾸지 마세요.
- 한두 문장으로 간결하게 한국어로 답하세요.
- 결과에 없는 정보를 만들어내지 마세요.

사용자 입력: "{{.Input}}"

처리 결과:
{{.Result}}

위 결과를 자연스러운 응답으로 바꿔 출력하세요.`

const chatTemplateText = `건강/할일 관리 데이터 시스템.

**시스템 기능**:
- 수면, 운동, 공부, 단백질, 체중 기록
- 할일 추가/완료, 습관 기록
- 사람 정보, 상호작용, 지식 저장
- 메모리 검색, 요약 조회

**응답 규칙**:
- 사실 기반 정보만 제공하고 짧게 답하세요.
- 불확실한 경우 "불확실"이라고 명시하세요.`

var (
	parserTemplate   = template.Must(template.New("parser").Parse(parserTemplateText))
	rephraseTemplate = template.Must(template.New("rephrase").Parse(rephraseTemplateText))
)

var weekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// Parser renders the intent-extraction system prompt for now, with optional
// related memories.
func Parser(now time.Time, memories []types.RetrievedMemory) (string, error) {
	data := struct {
		Now      string
		Today    string
		Weekday  string
		Memories []types.RetrievedMemory
	}{
		Now:      now.Format("2006-01-02 15:04"),
		Today:    types.FormatDate(now),
		Weekday:  weekdays[now.Weekday()],
		Memories: memories,
	}
	var buf bytes.Buffer
	if err := parserTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build parser prompt: %w", err)
	}
	return buf.String(), nil
}

// Rephrase renders the prompt that turns a handler result into a natural reply.
func Rephrase(userName, input, result string) (string, error) {
	data := struct {
		UserName string
		Input    string
		Result   string
	}{userName, input, result}
	var buf bytes.Buffer
	if err := rephraseTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build rephrase prompt: %w", err)
	}
	return buf.String(), nil
}

// Chat is the system prompt for free conversation.
func Chat() string {
	return chatTemplateText
}
