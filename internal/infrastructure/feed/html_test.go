package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"DailyEdition/internal/source"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://news.example.edu/listing/today")
	if err != nil {
		t.Fatalf("parse base: %v", err)
	}

	if got := resolve(base, "/story/1"); got != "https://news.example.edu/story/1" {
		t.Fatalf("unexpected relative resolution: %s", got)
	}
	if got := resolve(base, "https://cdn.example.edu/a.jpg"); got != "https://cdn.example.edu/a.jpg" {
		t.Fatalf("absolute url should be kept: %s", got)
	}
}

func TestParseEntry(t *testing.T) {
	t.Parallel()

	html := `
	<article>
	  <h2> Sample   Title </h2>
	  <a href="/story/42">read</a>
	  <img src="/img/42.jpg">
	  <p>Sample summary text.</p>
	  <span class="author">j.doe@example.edu (Jane Doe)</span>
	</article>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	base, _ := url.Parse("https://news.example.edu/")

	candidate, ok := parseEntry(doc.Find("article").First(), selectors(nil), base)
	if !ok {
		t.Fatalf("expected entry to parse")
	}

	if candidate.Title != "Sample Title" {
		t.Fatalf("unexpected title: %q", candidate.Title)
	}
	if candidate.Link != "https://news.example.edu/story/42" {
		t.Fatalf("unexpected link: %s", candidate.Link)
	}
	if candidate.Image != "https://news.example.edu/img/42.jpg" {
		t.Fatalf("unexpected image: %s", candidate.Image)
	}
	if candidate.Summary != "Sample summary text." {
		t.Fatalf("unexpected summary: %s", candidate.Summary)
	}
	if candidate.Author != "Jane Doe" {
		t.Fatalf("unexpected author: %s", candidate.Author)
	}
}

func TestHTMLFetcherFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "edition-test" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`
		<div class="story"><h3>First</h3><a href="/1">x</a><img src="/pixel.gif"></div>
		<div class="story"><h3></h3></div>
		<div class="story"><h3>Second</h3><a href="/2">x</a></div>
		<div class="story"><h3>Third</h3><a href="/3">x</a></div>`))
	}))
	defer server.Close()

	fetcher := NewHTMLFetcher(server.Client(), "edition-test", nil)
	src := source.Source{
		Name:      "campus",
		Kind:      source.KindHTML,
		URL:       server.URL + "/news",
		Selectors: map[string]string{"item": "div.story", "title": "h3"},
	}

	candidates, err := fetcher.Fetch(context.Background(), src, 2)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Title != "First" || candidates[1].Title != "Second" {
		t.Fatalf("unexpected order: %+v", candidates)
	}
	if candidates[0].Image != "" {
		t.Fatalf("tracking pixel should be skipped, got %s", candidates[0].Image)
	}
	if candidates[1].Link != server.URL+"/2" {
		t.Fatalf("unexpected link: %s", candidates[1].Link)
	}
	if candidates[0].SourceTag != strings.TrimPrefix(server.URL, "http://") {
		t.Fatalf("unexpected source tag: %s", candidates[0].SourceTag)
	}
}

func TestHTMLFetcherStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewHTMLFetcher(server.Client(), "", nil)
	_, err := fetcher.Fetch(context.Background(), source.Source{Name: "down", URL: server.URL}, 5)
	if err == nil {
		t.Fatalf("expected error for 502 response")
	}
}
