package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Candidate is a raw item pulled from a feed or data source before curation.
type Candidate struct {
	Title     string
	Summary   string
	SourceTag string
	Link      string
	Image     string
	Author    string
}

// Field returns the candidate value stored under a curated-item key.
func (c Candidate) Field(name string) string {
	switch name {
	case "title", "headline":
		return c.Title
	case "summary":
		return c.Summary
	case "source":
		return c.SourceTag
	case "link":
		return c.Link
	case "image", "imageUrl":
		return c.Image
	case "author":
		return c.Author
	default:
		return ""
	}
}

// Record renders the candidate for the judge. Missing optional fields become null.
func (c Candidate) Record() map[string]any {
	return map[string]any{
		"title":   c.Title,
		"summary": c.Summary,
		"source":  c.SourceTag,
		"link":    nullable(c.Link),
		"image":   nullable(c.Image),
		"author":  nullable(c.Author),
	}
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// CurationRequest is the input handed to the judge. It cannot change after
// NewCurationRequest returns.
type CurationRequest struct {
	candidates  []Candidate
	instruction string
	maxSelect   int
}

// NewCurationRequest copies candidates so later edits to the caller's slice
// do not reach the request.
func NewCurationRequest(candidates []Candidate, instruction string, maxSelect int) CurationRequest {
	return CurationRequest{
		candidates:  append([]Candidate(nil), candidates...),
		instruction: instruction,
		maxSelect:   maxSelect,
	}
}

// Candidates returns a copy of the ordered candidates.
func (r CurationRequest) Candidates() []Candidate {
	return append([]Candidate(nil), r.candidates...)
}

// Instruction is the rendered prompt.
func (r CurationRequest) Instruction() string { return r.instruction }

// MaxSelect is the selection count, zero for no limit.
func (r CurationRequest) MaxSelect() int { return r.maxSelect }

// CuratedItem is one record selected and reshaped by the judge.
type CuratedItem struct {
	Fields map[string]any
	// Origin is the candidate the item was matched back to, if any.
	Origin *Candidate
	// NeedsEnrichment marks items whose pass-through fields were not preserved.
	NeedsEnrichment bool
}

// String returns a field as text, or "" when absent or not a string.
func (c CuratedItem) String(key string) string {
	if c.Fields == nil {
		return ""
	}
	v, ok := c.Fields[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Set assigns a field, allocating the map if needed.
func (c *CuratedItem) Set(key string, value any) {
	if c.Fields == nil {
		c.Fields = map[string]any{}
	}
	c.Fields[key] = value
}

// MarshalJSON exposes only the curated fields.
func (c CuratedItem) MarshalJSON() ([]byte, error) {
	if c.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Fields)
}

// DocumentPath addresses a document in the store, e.g. daily_edition/hero_story.
type DocumentPath []string

// ParsePath splits a slash separated document path.
func ParsePath(raw string) (DocumentPath, error) {
	parts := strings.Split(strings.Trim(raw, "/"), "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("document path %q needs a collection and a document", raw)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("document path %q has an empty segment", raw)
		}
	}
	return DocumentPath(parts), nil
}

func (p DocumentPath) String() string {
	return strings.Join(p, "/")
}

// Collection is the first path segment.
func (p DocumentPath) Collection() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Document is the remaining path below the collection.
func (p DocumentPath) Document() string {
	if len(p) < 2 {
		return ""
	}
	return strings.Join(p[1:], "/")
}

// SectionDocument is the persisted form of one edition section.
type SectionDocument struct {
	Path        DocumentPath
	LastUpdated time.Time
	Payload     map[string]any
}

// Quote is the raw price data for one market symbol.
type Quote struct {
	Symbol        string
	Price         float64
	PreviousClose float64
}
