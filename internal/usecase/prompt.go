package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"DailyEdition/internal/domain"
)

var promptFuncs = template.FuncMap{
	"join": strings.Join,
}

// NewPrompt parses an instruction template. Templates receive PromptData.
func NewPrompt(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(promptFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return tmpl, nil
}

// MustPrompt is NewPrompt for package-level templates.
func MustPrompt(name, text string) *template.Template {
	tmpl, err := NewPrompt(name, text)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// PromptData is what a section template can reference.
type PromptData struct {
	// Listing is a numbered plain-text rendering of the candidates.
	Listing string
	// JSON is the candidate records serialized as a JSON array.
	JSON       string
	Count      int
	MaxSelect  int
	Today      string
	Categories []string
}

func buildPromptData(sec Section, candidates []domain.Candidate, now time.Time) (PromptData, error) {
	records := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, c.Record())
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return PromptData{}, fmt.Errorf("serialize candidates: %w", err)
	}

	return PromptData{
		Listing:    listing(candidates),
		JSON:       string(raw),
		Count:      len(candidates),
		MaxSelect:  sec.MaxSelect,
		Today:      now.Format("January 2, 2006"),
		Categories: sec.Categories,
	}, nil
}

func listing(candidates []domain.Candidate) string {
	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, c.SourceTag, c.Title)
		if c.Summary != "" {
			fmt.Fprintf(&b, " - %s", c.Summary)
		}
		if c.Link != "" {
			fmt.Fprintf(&b, " (%s)", c.Link)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderPrompt(sec Section, data PromptData) (string, error) {
	if sec.Prompt == nil {
		return "", fmt.Errorf("section %s has no prompt", sec.Key)
	}
	var buf bytes.Buffer
	if err := sec.Prompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt for %s: %w", sec.Key, err)
	}
	return buf.String(), nil
}
