package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/logging"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

var ErrDisabled = errors.New("gemini not configured")

type QuizClient struct {
	apiKey string
	model  string
	log    zerolog.Logger
}

func NewQuizClient(apiKey, model string) *QuizClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &QuizClient{apiKey: apiKey, model: model, log: logging.Component("quiz")}
}

// Draft asks Gemini for n questions about the lesson and parses the reply.
func (c *QuizClient) Draft(ctx context.Context, title, body string, n int) ([]QuizQuestion, error) {
	if c == nil || c.apiKey == "" {
		return nil, ErrDisabled
	}
	l := logging.FromContext(ctx, c.log)
	start := time.Now()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		l.Error().Err(err).Str("stage", "client_init").Msg("gemini client")
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(BuildQuizPrompt(title, body, n)),
		}, genai.RoleUser),
	}
	temp := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		l.Error().Err(err).Str("model", c.model).Msg("gemini generate failed")
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	rawText := res.Text()
	qs, err := ParseQuiz(rawText)
	if err != nil {
		text := strings.ReplaceAll(rawText, "\n", " ")
		if len(text) > 80 {
			text = text[:80]
		}
		l.Warn().Err(err).Int("len", len(rawText)).Str("text", text).Msg("quiz parse failed")
		return nil, err
	}
	l.Info().Int("questions", len(qs)).Int64("total_ms", time.Since(start).Milliseconds()).Msg("quiz drafted")
	return qs, nil
}
