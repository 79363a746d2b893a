// Package engine implements the narrator turn service on top of the Gemini
// API. The model plays a scripted narrator and answers in a fixed YAML shape
// carrying the reply text plus progression fields.
package engine

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"questline/internal/models"
)

//go:embed prompts/narrator_turn.txt
var narratorTurnPrompt string

const recentExchangeLimit = 8

type exchange struct {
	User     string
	Narrator string
}

type Engine struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	catalog []models.Mission
	recent  []exchange
}

func NewEngine(ctx context.Context, apiKey, modelName string, catalog []models.Mission) (*Engine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Engine{
		client:  client,
		model:   client.GenerativeModel(modelName),
		catalog: catalog,
	}, nil
}

func (e *Engine) Close() {
	e.client.Close()
}

// Send submits one user turn and parses the narrator's YAML reply.
func (e *Engine) Send(ctx context.Context, text string) (*models.TurnReply, error) {
	tmpl, err := template.New("narrator_turn").Parse(narratorTurnPrompt)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	data := struct {
		Missions []models.Mission
		Recent   []exchange
		Text     string
	}{
		Missions: e.catalog,
		Recent:   e.recent,
		Text:     text,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	resp, err := e.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content returned from Gemini")
	}

	part := resp.Candidates[0].Content.Parts[0]
	raw, ok := part.(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response type from Gemini")
	}

	reply, err := parseReply(string(raw))
	if err != nil {
		return nil, err
	}

	e.recent = append(e.recent, exchange{User: text, Narrator: reply.Content})
	if len(e.recent) > recentExchangeLimit {
		e.recent = e.recent[len(e.recent)-recentExchangeLimit:]
	}
	return reply, nil
}
