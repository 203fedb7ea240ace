package sim

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini plays the passenger with a Gemini model. The driver still only reacts to
// keywords and numbers, so the model is told to keep its lines short.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini connects to Gemini. Call Close when done.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.9)
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Next(ctx context.Context, v View) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt(v)))
	if err != nil {
		return "", fmt.Errorf("failed to generate line: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "ok", nil
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	line := strings.TrimSpace(b.String())
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if line == "" {
		return "ok", nil
	}
	return line, nil
}

func prompt(v View) string {
	task := "Tell the driver where you want to go. Pick a well known Bangalore neighbourhood and name it plainly."
	if v.Session.HasDestination() {
		task = fmt.Sprintf("The driver wants ₹%d. Haggle for a better fare: name a number, push back, or agree if the price seems fair.",
			v.Session.CurrentPrice)
	}

	return fmt.Sprintf(`You are a passenger haggling with an auto-rickshaw driver in Bangalore, standing at %s.
Speak casual Hinglish. Reply with one short line only, no narration.

Conversation so far:
%s

%s`,
		v.Session.Location.Name,
		strings.Join(v.Transcript, "\n"),
		task,
	)
}
