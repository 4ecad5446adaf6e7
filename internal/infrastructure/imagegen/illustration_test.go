package imagegen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"DailyEdition/internal/domain"
)

type textJudge struct {
	text   string
	err    error
	prompt string
}

func (j *textJudge) GenerateStructured(context.Context, string) (any, error) {
	return nil, errors.New("not used")
}

func (j *textJudge) GenerateText(_ context.Context, prompt string) (string, error) {
	j.prompt = prompt
	return j.text, j.err
}

func TestResolveBuildsEncodedURL(t *testing.T) {
	t.Parallel()

	judge := &textJudge{text: " \"Students walking across sunny campus quad\" "}
	ill := NewIllustrator(judge, "https://img.example/prompt", "university")

	got, err := ill.Resolve(context.Background(), domain.CuratedItem{Fields: map[string]any{"title": "Fall convocation"}})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	want := "https://img.example/prompt/Students%20walking%20across%20sunny%20campus%20quad?nologo=true&width=1024&height=600&seed=42"
	if got != want {
		t.Fatalf("unexpected url:\n got %s\nwant %s", got, want)
	}
	if !strings.Contains(judge.prompt, "'Fall convocation'") || !strings.Contains(judge.prompt, "'university'") {
		t.Fatalf("prompt missing title or keyword: %s", judge.prompt)
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	ill := NewIllustrator(&textJudge{err: errors.New("quota")}, "")
	if _, err := ill.Resolve(context.Background(), domain.CuratedItem{Fields: map[string]any{"headline": "h"}}); err == nil {
		t.Fatalf("expected judge error")
	}
	if _, err := ill.Resolve(context.Background(), domain.CuratedItem{}); err == nil {
		t.Fatalf("expected missing title error")
	}
	if _, err := NewIllustrator(&textJudge{text: "  "}, "").Resolve(context.Background(),
		domain.CuratedItem{Fields: map[string]any{"title": "t"}}); err == nil {
		t.Fatalf("expected empty description error")
	}
}

func TestTrimWords(t *testing.T) {
	t.Parallel()

	got := trimWords("one two three four five six seven eight nine ten eleven.", 10)
	if got != "one two three four five six seven eight nine ten" {
		t.Fatalf("unexpected trim: %q", got)
	}
}
