package intent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/easeaico/lifebot/internal/types"
)

type entities map[string]any

func (e entities) present(key string) bool {
	v, ok := e[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func (e entities) str(key string) string {
	switch v := e[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// number accepts JSON numbers and numeric strings such as "7.5". NaN and
// infinities are rejected.
func (e entities) number(key string) (float64, bool) {
	var f float64
	switch v := e[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// list accepts a JSON array or a comma-separated string.
func (e entities) list(key string) []string {
	var out []string
	switch v := e[key].(type) {
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" && item != nil {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// date returns the optional date entity, validated as YYYY-MM-DD.
func (e entities) date(name Name) (string, error) {
	value := e.str("date")
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse(types.DateLayout, value); err != nil {
		return "", &ValidationError{Intent: name, Field: "date", Message: "날짜 형식이 올바르지 않습니다. (YYYY-MM-DD)"}
	}
	return value, nil
}
