package ollama

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/satindergrewal/harmonix/internal/synth"
)

// PromptGenerator uses an LLM to vary the synthesis prompt per track.
type PromptGenerator struct {
	client *Client

	mu         sync.Mutex
	lastPrompt map[string]string // style -> last prompt used (avoid repeats)
}

// NewPromptGenerator creates a prompt generator backed by an Ollama client.
func NewPromptGenerator(client *Client) *PromptGenerator {
	return &PromptGenerator{
		client:     client,
		lastPrompt: make(map[string]string),
	}
}

const promptSystemPrompt = `You write one-sentence descriptions of instrumental music for a procedural synthesizer.

Given a style and a required keyword, output ONE description of 8-20 words.

Rules:
- The description MUST contain the required keyword exactly as given
- Describe mood, tempo and texture
- Do not mention any other musical style or instrument family
- Each description must differ from the previous one

Output ONLY the description. No quotes, no preamble.

/no_think`

// styleKeyword is the word an LLM prompt must carry so it classifies back
// to the requested style.
var styleKeyword = map[synth.Style]string{
	synth.Electronic: "electronic",
	synth.Classical:  "piano",
	synth.Rock:       "guitar",
	synth.Jazz:       "jazz",
	synth.Ambient:    "ambient",
}

// GeneratePrompt creates a synthesis prompt for a style. It returns "" on
// failure or when the LLM output would not render in the requested style;
// the caller falls back to the static prompt.
func (g *PromptGenerator) GeneratePrompt(ctx context.Context, style string) string {
	target, ok := synth.ParseStyle(style)
	if !ok {
		return ""
	}

	g.mu.Lock()
	last := g.lastPrompt[style]
	g.mu.Unlock()

	req := fmt.Sprintf("Style: %s", style)
	if kw, ok := styleKeyword[target]; ok {
		req += fmt.Sprintf("\nRequired keyword: %s", kw)
	} else {
		req += "\nRequired keyword: none, and avoid naming any genre or instrument"
	}
	if last != "" {
		req += fmt.Sprintf("\nPrevious description (do NOT repeat this): %s", last)
	}

	prompt, err := g.client.Generate(ctx, promptSystemPrompt, req)
	if err != nil {
		log.Printf("Ollama prompt generation failed: %v", err)
		return ""
	}

	prompt = cleanOutput(prompt)
	if len(prompt) < 15 || len(prompt) > 300 {
		log.Printf("Ollama returned unusable prompt: %q", prompt)
		return ""
	}
	if got, _ := synth.Classify(prompt); got != target {
		log.Printf("Ollama prompt for %s classifies as %s, discarding: %q", target, got, prompt)
		return ""
	}

	g.mu.Lock()
	g.lastPrompt[style] = prompt
	g.mu.Unlock()

	log.Printf("LLM prompt [%s]: %s", style, prompt)
	return prompt
}

const nameSystemPrompt = `You are a track name generator for a procedural radio station.

Given a style and a description, generate a short evocative track name (2-4 words).

Rules:
- Evocative and atmospheric, not literal
- No style name in the title
- No numbers, no "Track 1", no "Untitled"
- Lowercase only

Output ONLY the track name. Nothing else.

/no_think`

// GenerateName creates a track name from style and prompt. Returns "" on
// failure.
func (g *PromptGenerator) GenerateName(ctx context.Context, style, prompt string) string {
	name, err := g.client.Generate(ctx, nameSystemPrompt, fmt.Sprintf("Style: %s\nDescription: %s", style, prompt))
	if err != nil {
		log.Printf("Ollama name generation failed: %v", err)
		return ""
	}

	name = strings.ToLower(cleanOutput(name))
	if name == "" || len(name) > 60 || strings.Count(name, " ") > 4 {
		log.Printf("Ollama returned unusable name: %q", name)
		return ""
	}
	return name
}

// cleanOutput strips common LLM artifacts.
func cleanOutput(s string) string {
	s = strings.TrimSpace(s)

	// thinking-mode leakage
	if idx := strings.Index(s, "</think>"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("</think>"):])
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	lower := strings.ToLower(s)
	for _, p := range []string{"here's a description:", "here is a description:", "description:", "name:"} {
		if strings.HasPrefix(lower, p) {
			s = s[len(p):]
			break
		}
	}
	return strings.TrimSpace(s)
}
