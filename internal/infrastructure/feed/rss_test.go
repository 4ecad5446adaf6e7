package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"

	"DailyEdition/internal/source"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>Campus</title>
  <item>
    <title>Library reopens</title>
    <link>https://news.example.edu/library</link>
    <author>comms@example.edu (Campus Communications)</author>
    <description><![CDATA[<p>The <b>main</b> library reopens Monday.</p>]]></description>
    <media:content url="https://cdn.example.edu/library.jpg" medium="image"/>
  </item>
  <item>
    <title>Research grant awarded</title>
    <link>https://news.example.edu/grant</link>
    <description><![CDATA[<img src="https://cdn.example.edu/grant.png"/> A large grant.]]></description>
  </item>
  <item>
    <title>Third story</title>
    <link>https://news.example.edu/third</link>
    <description>Plain text.</description>
  </item>
</channel>
</rss>`

func TestRSSFetcherFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	fetcher := NewRSSFetcher(server.Client(), "edition-test", nil)
	candidates, err := fetcher.Fetch(context.Background(), source.Source{Name: "campus", URL: server.URL + "/feed"}, 2)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Title != "Library reopens" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Summary != "The main library reopens Monday." {
		t.Fatalf("unexpected summary: %q", first.Summary)
	}
	if first.Image != "https://cdn.example.edu/library.jpg" {
		t.Fatalf("unexpected image: %s", first.Image)
	}
	if first.Author != "Campus Communications" {
		t.Fatalf("unexpected author: %s", first.Author)
	}

	second := candidates[1]
	if second.Image != "https://cdn.example.edu/grant.png" {
		t.Fatalf("expected embedded image, got %s", second.Image)
	}
	if second.Author != "Staff" {
		t.Fatalf("expected default author, got %s", second.Author)
	}
}

func TestRSSFetcherMalformedFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not a feed"))
	}))
	defer server.Close()

	fetcher := NewRSSFetcher(server.Client(), "", nil)
	if _, err := fetcher.Fetch(context.Background(), source.Source{Name: "bad", URL: server.URL}, 5); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFirstImageOrder(t *testing.T) {
	t.Parallel()

	item := &gofeed.Item{
		Description: `<img src="https://cdn.example.org/pixel.gif">`,
		Enclosures:  []*gofeed.Enclosure{{URL: "https://cdn.example.org/audio.mp3", Type: "audio/mpeg"}, {URL: "https://cdn.example.org/photo.jpg", Type: "image/jpeg"}},
	}

	if got := FirstImage(item, DefaultImageStrategies...); got != "https://cdn.example.org/photo.jpg" {
		t.Fatalf("expected enclosure image, got %s", got)
	}

	item.Enclosures = nil
	if got := FirstImage(item, DefaultImageStrategies...); got != "" {
		t.Fatalf("tracking pixel must be ignored, got %s", got)
	}
}

func TestTextHelpers(t *testing.T) {
	t.Parallel()

	if got := Truncate(strings.Repeat("é", 250), SummaryLimit); len([]rune(got)) != SummaryLimit {
		t.Fatalf("expected %d runes, got %d", SummaryLimit, len([]rune(got)))
	}
	if got := AuthorName("  "); got != "Staff" {
		t.Fatalf("unexpected default author: %s", got)
	}
	if got := AuthorName("Jane Doe"); got != "Jane Doe" {
		t.Fatalf("plain names must pass through: %s", got)
	}
	if got := PlainText("<div>a\n\n b</div>"); got != "a b" {
		t.Fatalf("unexpected plain text: %q", got)
	}
}
