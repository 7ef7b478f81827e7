package gemini

import (
	"context"
	"fmt"
	"strings"

	"frailes/internal/copywriter"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const jsonMIMEType = "application/json"

type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, req copywriter.Request) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if req.Instruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instruction)}}
	}
	if req.JSON {
		model.ResponseMIMEType = jsonMIMEType
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", copywriter.ErrEmptyDraft
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func (g *Generator) Close() error {
	return g.client.Close()
}
