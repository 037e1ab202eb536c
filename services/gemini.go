package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// ScriptWriter drafts the narration text of a podcast.
type ScriptWriter interface {
	WriteScript(ctx context.Context, title, description string) (string, error)
}

const scriptPrompt = `You are a professional podcast host writing a solo narration script.
Write a natural, engaging script for the episode below.
Rules:
- Plain text only, no markdown, no stage directions, no speaker labels.
- Spell out abbreviations.
- Keep it under 600 words.

Title: %s
Description: %s`

type GeminiScriptWriter struct {
	client *genai.Client
	model  string
}

func NewGeminiScriptWriter(ctx context.Context, apiKey, model string) (*GeminiScriptWriter, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}
	return &GeminiScriptWriter{client: client, model: model}, nil
}

func (g *GeminiScriptWriter) Close() error {
	return g.client.Close()
}

func (g *GeminiScriptWriter) WriteScript(ctx context.Context, title, description string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(scriptPrompt, title, description)))
	if err != nil {
		return "", errors.Wrap(err, "gemini generate")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
