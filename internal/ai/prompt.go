package ai

import (
	"fmt"
	"strings"
)

const quizPrompt = `You write short comprehension quizzes for "Learn & Earn" lessons in a rewards app.

Rules:

* Use only facts stated in the lesson. Do not invent numbers, dates, or product claims.
* Each question has between 2 and 5 answer options and exactly one correct option.
* Keep questions under 160 characters and options under 80 characters.
* Output JSON only: an array of objects {"question": string, "options": [string], "answer": <zero-based index of the correct option>, "explanation": string}.
* No markdown, no commentary before or after the JSON.`

// BuildQuizPrompt renders the instruction block for a lesson. n is clamped to 1..10.
func BuildQuizPrompt(title, body string, n int) string {
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}
	parts := []string{
		quizPrompt,
		fmt.Sprintf("Write exactly %d questions.", n),
		fmt.Sprintf("Lesson title: %s\nLesson body:\n%s", strings.TrimSpace(title), strings.TrimSpace(body)),
	}
	return strings.Join(parts, "\n\n")
}
