package summary

import "sync"

// ReportInput is the immutable snapshot the three aggregation passes read.
type ReportInput struct {
	RecentPlays []PlayEvent
	Features    []*AudioFeatures
	TopArtists  []ArtistSnapshot
	TopTracks   []TrackSnapshot
	Recommended []TrackSnapshot
	Playlist    *PlaylistRef
}

// BuildSeasonalReport runs the stream-count, habit-histogram, and trend
// passes over the same input and assembles the result. The passes have no
// data dependency on each other, so they run concurrently, each writing only
// its own result slot before the join.
func BuildSeasonalReport(input ReportInput, lookup GenreLookupFunc) (SeasonalReport, error) {
	var (
		artistStats []ArtistStat
		habits      ListeningHabits
		habitsErr   error
		trends      TrendAnalysis
		trendsErr   error
	)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		artistStats = CountStreams(input.RecentPlays, input.TopArtists)
	}()
	go func() {
		defer wg.Done()
		habits, habitsErr = BuildListeningHabits(input.RecentPlays)
	}()
	go func() {
		defer wg.Done()
		trends, trendsErr = AnalyzeTrends(input.RecentPlays, input.Features, input.TopArtists, lookup)
	}()

	wg.Wait()

	if habitsErr != nil {
		return SeasonalReport{}, habitsErr
	}
	if trendsErr != nil {
		return SeasonalReport{}, trendsErr
	}

	return Assemble(artistStats, input.TopTracks, input.Recommended, input.Playlist, habits, trends), nil
}

// Assemble composes the aggregation outputs into one report. Pure
// composition, no I/O.
func Assemble(artists []ArtistStat, topTracks, recommended []TrackSnapshot, playlist *PlaylistRef, habits ListeningHabits, trends TrendAnalysis) SeasonalReport {
	report := SeasonalReport{
		TopArtists: artists,
		Playlist:   playlist,
		Habits:     habits,
		Trends:     trends,
	}

	var totalPopularity int
	for _, track := range topTracks {
		report.TopTracks = append(report.TopTracks, TrackStat{
			Name:       track.Name,
			Artist:     track.Artist,
			Album:      track.Album,
			Popularity: track.Popularity,
		})
		totalPopularity += track.Popularity
	}
	if len(topTracks) > 0 {
		report.AveragePopularity = float64(totalPopularity) / float64(len(topTracks))
	}

	for _, track := range recommended {
		report.RecommendedTracks = append(report.RecommendedTracks, TrackStat{
			Name:       track.Name,
			Artist:     track.Artist,
			Album:      track.Album,
			Popularity: track.Popularity,
		})
	}

	return report
}
