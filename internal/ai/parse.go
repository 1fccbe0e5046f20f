package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	ErrParseFailed = errors.New("parse_failed")
)

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// ParseQuiz extracts the question array from model output. It accepts a bare
// JSON array, a fenced ```json block, or an object with a "questions" field,
// and drops questions that are malformed.
func ParseQuiz(text string) ([]QuizQuestion, error) {
	raw := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(raw); len(m) >= 2 {
		raw = strings.TrimSpace(m[1])
	}
	// fallback: outermost array or object in surrounding prose
	if !strings.HasPrefix(raw, "[") && !strings.HasPrefix(raw, "{") {
		start := strings.IndexAny(raw, "[{")
		if start < 0 {
			return nil, fmt.Errorf("%w: no json found", ErrParseFailed)
		}
		closer := "]"
		if raw[start] == '{' {
			closer = "}"
		}
		end := strings.LastIndex(raw, closer)
		if end <= start {
			return nil, fmt.Errorf("%w: unterminated json", ErrParseFailed)
		}
		raw = raw[start : end+1]
	}

	var qs []QuizQuestion
	if strings.HasPrefix(raw, "{") {
		var wrapped struct {
			Questions []QuizQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
		}
		qs = wrapped.Questions
	} else if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	out := make([]QuizQuestion, 0, len(qs))
	for _, q := range qs {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || len(q.Options) < 2 || len(q.Options) > 5 {
			continue
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no valid questions", ErrParseFailed)
	}
	return out, nil
}
