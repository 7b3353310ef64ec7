package intent

import "strings"

const defaultQuestion = "무엇을 도와드릴까요? (수면/운동/할일/요약 등)"

// ClarificationQuestion returns the follow-up question for a low-confidence parse.
func ClarificationQuestion(raw Raw) string {
	e := entities(raw.Entities)
	switch Name(strings.ToLower(strings.TrimSpace(raw.Intent))) {
	case NameSleep:
		if !e.present("sleep_hours") {
			return "몇 시간 주무셨나요?"
		}
	case NameWorkout:
		if !e.present("workout_minutes") {
			return "몇 분 운동하셨나요?"
		}
	case NameProtein:
		if !e.present("protein_grams") {
			return "단백질을 몇 그램 섭취하셨나요?"
		}
	case NameWeight:
		if !e.present("weight_kg") {
			return "체중이 몇 kg인가요?"
		}
	case NameStudy:
		if !e.present("study_hours") {
			return "몇 시간 공부하셨나요?"
		}
	case NameTaskAdd:
		if !e.present("task_title") {
			return "어떤 할일인가요?"
		}
	case NameTaskComplete:
		if !e.present("task_id") && !e.present("task_title") {
			return "어떤 할일을 완료하셨나요? (번호 또는 제목)"
		}
	case NameRememberPerson, NameRememberInteraction:
		if !e.present("person_name") {
			return "어떤 분에 대한 이야기인가요?"
		}
	case NameQueryMemory:
		if !e.present("query") {
			return "무엇을 찾아드릴까요?"
		}
	}
	return defaultQuestion
}
