package summary

import (
	"errors"
	"math"
	"testing"
)

func TestAssembleAveragePopularity(t *testing.T) {
	tracks := []TrackSnapshot{
		{Name: "A", Popularity: 80},
		{Name: "B", Popularity: 60},
		{Name: "C", Popularity: 70},
	}

	report := Assemble(nil, tracks, nil, nil, ListeningHabits{}, TrendAnalysis{})
	if report.AveragePopularity != 70 {
		t.Errorf("AveragePopularity = %v, want 70", report.AveragePopularity)
	}
	if len(report.TopTracks) != 3 {
		t.Errorf("got %d top tracks, want 3", len(report.TopTracks))
	}
}

func TestAssembleEmptyTopTracks(t *testing.T) {
	report := Assemble(nil, nil, nil, nil, ListeningHabits{}, TrendAnalysis{})
	if report.AveragePopularity != 0 {
		t.Errorf("AveragePopularity = %v, want 0 for empty top tracks", report.AveragePopularity)
	}
}

func TestBuildSeasonalReport(t *testing.T) {
	plays := []PlayEvent{
		{TrackName: "One", ArtistNames: []string{"X"}, ArtistIDs: []string{"x1"}, Popularity: 30, PlayedAt: "2024-03-01T08:00:00Z"},
		{TrackName: "Two", ArtistNames: []string{"X"}, ArtistIDs: []string{"x1"}, Popularity: 50, PlayedAt: "2024-03-01T09:00:00Z"},
	}
	input := ReportInput{
		RecentPlays: plays,
		Features:    []*AudioFeatures{nil, nil},
		TopArtists:  []ArtistSnapshot{{ID: "x1", Name: "X", Popularity: 75, Genres: []string{"rock"}}},
		TopTracks:   []TrackSnapshot{{Name: "Two", Artist: "X", Popularity: 50}},
		Recommended: []TrackSnapshot{{Name: "Rec", Artist: "Z", Popularity: 40}},
		Playlist:    &PlaylistRef{ID: "p1", Name: "Your Top Tracks + Recommendations"},
	}

	report, err := BuildSeasonalReport(input, noGenres)
	if err != nil {
		t.Fatalf("BuildSeasonalReport: %v", err)
	}

	if len(report.TopArtists) != 1 || report.TopArtists[0].Streams != 2 {
		t.Errorf("TopArtists = %+v, want X with 2 streams", report.TopArtists)
	}
	if report.TopArtists[0].MostPopularTrack != "Two" {
		t.Errorf("most popular track = %q, want Two", report.TopArtists[0].MostPopularTrack)
	}
	if report.AveragePopularity != 50 {
		t.Errorf("AveragePopularity = %v, want 50", report.AveragePopularity)
	}
	if report.Habits.TotalPlays != 2 {
		t.Errorf("TotalPlays = %d, want 2", report.Habits.TotalPlays)
	}
	if !math.IsNaN(report.Trends.FeatureTrends.Energy) {
		t.Errorf("energy delta = %v, want NaN with no feature data", report.Trends.FeatureTrends.Energy)
	}
	if len(report.RecommendedTracks) != 1 || report.RecommendedTracks[0].Name != "Rec" {
		t.Errorf("RecommendedTracks = %+v, want the recommendation snapshot", report.RecommendedTracks)
	}
	if report.Playlist == nil || report.Playlist.ID != "p1" {
		t.Errorf("Playlist = %+v, want p1", report.Playlist)
	}
}

func TestBuildSeasonalReportPropagatesParseError(t *testing.T) {
	input := ReportInput{
		RecentPlays: []PlayEvent{{PlayedAt: "not-a-time"}},
		Features:    []*AudioFeatures{nil},
	}

	_, err := BuildSeasonalReport(input, noGenres)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}
