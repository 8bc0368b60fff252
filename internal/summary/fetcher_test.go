package summary

import (
	"errors"
	"fmt"
	"testing"
)

func makePlays(n int, prefix string) []PlayEvent {
	plays := make([]PlayEvent, 0, n)
	for i := 0; i < n; i++ {
		plays = append(plays, PlayEvent{
			TrackID:   fmt.Sprintf("%s-%d", prefix, i),
			TrackName: fmt.Sprintf("Track %s %d", prefix, i),
			PlayedAt:  "2024-03-01T12:00:00Z",
		})
	}
	return plays
}

func TestFetchAllRecentPlaysTwoPages(t *testing.T) {
	var calls []string
	fetch := func(after string) (RecentPage, error) {
		calls = append(calls, after)
		switch after {
		case "":
			return RecentPage{Items: makePlays(50, "a"), HasMore: true, LastCursor: "1700000000000"}, nil
		case "1700000000000":
			return RecentPage{Items: makePlays(30, "b"), HasMore: false}, nil
		default:
			return RecentPage{}, fmt.Errorf("unexpected cursor %q", after)
		}
	}

	plays, err := FetchAllRecentPlays(fetch, 50)
	if err != nil {
		t.Fatalf("FetchAllRecentPlays: %v", err)
	}
	if len(plays) != 80 {
		t.Errorf("got %d plays, want 80", len(plays))
	}
	if len(calls) != 2 {
		t.Errorf("got %d page fetches, want 2", len(calls))
	}
	// Fetch order is preserved across pages.
	if plays[0].TrackID != "a-0" || plays[79].TrackID != "b-29" {
		t.Errorf("pages concatenated out of order: first=%s last=%s", plays[0].TrackID, plays[79].TrackID)
	}
}

func TestFetchAllRecentPlaysShortFirstPage(t *testing.T) {
	calls := 0
	fetch := func(after string) (RecentPage, error) {
		calls++
		// Upstream claims more is available; the short page still ends it.
		return RecentPage{Items: makePlays(10, "a"), HasMore: true, LastCursor: "123"}, nil
	}

	plays, err := FetchAllRecentPlays(fetch, 50)
	if err != nil {
		t.Fatalf("FetchAllRecentPlays: %v", err)
	}
	if len(plays) != 10 {
		t.Errorf("got %d plays, want 10", len(plays))
	}
	if calls != 1 {
		t.Errorf("got %d page fetches, want 1", calls)
	}
}

func TestFetchAllRecentPlaysEmptyFirstPage(t *testing.T) {
	fetch := func(after string) (RecentPage, error) {
		return RecentPage{}, nil
	}

	plays, err := FetchAllRecentPlays(fetch, 50)
	if err != nil {
		t.Fatalf("FetchAllRecentPlays: %v", err)
	}
	if len(plays) != 0 {
		t.Errorf("got %d plays, want 0", len(plays))
	}
}

func TestFetchAllRecentPlaysFullPageWithoutCursor(t *testing.T) {
	calls := 0
	fetch := func(after string) (RecentPage, error) {
		calls++
		// A full page with nothing to resume from; refetching with "" would
		// hand back this same page forever.
		return RecentPage{Items: makePlays(50, "a"), HasMore: true, LastCursor: ""}, nil
	}

	plays, err := FetchAllRecentPlays(fetch, 50)
	if err != nil {
		t.Fatalf("FetchAllRecentPlays: %v", err)
	}
	if len(plays) != 50 {
		t.Errorf("got %d plays, want 50", len(plays))
	}
	if calls != 1 {
		t.Errorf("got %d page fetches, want 1", calls)
	}
}

func TestFetchAllRecentPlaysStopsWhenUpstreamHasNoMore(t *testing.T) {
	calls := 0
	fetch := func(after string) (RecentPage, error) {
		calls++
		return RecentPage{Items: makePlays(50, "a"), HasMore: false, LastCursor: "1700000000000"}, nil
	}

	plays, err := FetchAllRecentPlays(fetch, 50)
	if err != nil {
		t.Fatalf("FetchAllRecentPlays: %v", err)
	}
	if len(plays) != 50 {
		t.Errorf("got %d plays, want 50", len(plays))
	}
	if calls != 1 {
		t.Errorf("got %d page fetches, want 1", calls)
	}
}

func TestFetchAllRecentPlaysFailsFast(t *testing.T) {
	upstreamErr := errors.New("upstream exploded")
	calls := 0
	fetch := func(after string) (RecentPage, error) {
		calls++
		if calls == 2 {
			return RecentPage{}, upstreamErr
		}
		return RecentPage{Items: makePlays(50, "a"), HasMore: true, LastCursor: "1"}, nil
	}

	plays, err := FetchAllRecentPlays(fetch, 50)
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("err = %v, want wrapped upstream error", err)
	}
	if plays != nil {
		t.Errorf("expected no partial result on error, got %d plays", len(plays))
	}
}
