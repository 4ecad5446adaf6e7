package source

import (
	"context"
	"errors"
	"testing"

	"DailyEdition/internal/domain"
)

type stubFetcher struct{ kind string }

func (s stubFetcher) Kind() string { return s.kind }

func (s stubFetcher) Fetch(context.Context, Source, int) ([]domain.Candidate, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(stubFetcher{kind: KindRSS}, stubFetcher{kind: KindHTML})

	if _, err := reg.Resolve(KindRSS); err != nil {
		t.Fatalf("resolve rss: %v", err)
	}
	if _, err := reg.Resolve(KindQuotes); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if got := reg.Kinds(); len(got) != 2 || got[0] != KindHTML || got[1] != KindRSS {
		t.Fatalf("unexpected kinds: %v", got)
	}
}

func TestSourceTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		src  Source
		want string
	}{
		{Source{Name: "fp", URL: "https://financialpost.com/feed"}, "financialpost.com"},
		{Source{Name: "indicators"}, "indicators"},
		{Source{Name: "broken", URL: "::"}, "broken"},
	}
	for _, tc := range cases {
		if got := tc.src.Tag(); got != tc.want {
			t.Fatalf("Tag(%+v) = %q, want %q", tc.src, got, tc.want)
		}
	}
}
