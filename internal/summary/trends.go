package summary

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// RollingWindow is the trailing window the feature trends average over.
const RollingWindow = 10

const maxEmergingGenres = 5

// GenreLookupFunc resolves genres for a batch of artist IDs in one upstream
// call, keyed by artist ID. The analyzer passes each distinct primary artist
// exactly once.
type GenreLookupFunc func(artistIDs []string) (map[string][]string, error)

// AnalyzeTrends computes rolling-mean feature deltas over the recent plays
// and flags genres that are new relative to the established top-artist set.
//
// features is order-aligned with plays; nil entries (tracks the upstream has
// no analysis for) are skipped. With fewer than RollingWindow analyzable
// plays every delta is NaN, a degenerate result rather than an error.
func AnalyzeTrends(plays []PlayEvent, features []*AudioFeatures, topArtists []ArtistSnapshot, lookup GenreLookupFunc) (TrendAnalysis, error) {
	if len(features) != len(plays) {
		return TrendAnalysis{}, fmt.Errorf("got %d feature entries for %d plays", len(features), len(plays))
	}

	type timedPlay struct {
		at       time.Time
		play     PlayEvent
		features *AudioFeatures
	}

	timed := make([]timedPlay, 0, len(plays))
	for i, play := range plays {
		t, err := parseTimestamp(play.PlayedAt)
		if err != nil {
			return TrendAnalysis{}, err
		}
		timed = append(timed, timedPlay{at: t, play: play, features: features[i]})
	}
	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].at.Before(timed[j].at)
	})

	var danceability, energy, valence []float64
	for _, tp := range timed {
		if tp.features == nil {
			continue
		}
		danceability = append(danceability, tp.features.Danceability)
		energy = append(energy, tp.features.Energy)
		valence = append(valence, tp.features.Valence)
	}

	analysis := TrendAnalysis{
		TopGenres: countTopGenres(topArtists, 5),
		FeatureTrends: FeatureTrends{
			Danceability: rollingMeanDelta(danceability, RollingWindow),
			Energy:       rollingMeanDelta(energy, RollingWindow),
			Valence:      rollingMeanDelta(valence, RollingWindow),
		},
	}

	emerging, err := emergingGenres(distinctPrimaryArtists(plays), topArtists, lookup)
	if err != nil {
		return TrendAnalysis{}, err
	}
	analysis.EmergingGenres = emerging
	analysis.Recommendations = trendMessages(analysis.FeatureTrends, emerging)

	return analysis, nil
}

// distinctPrimaryArtists returns each play's first-credited artist ID, in play
// order, without duplicates.
func distinctPrimaryArtists(plays []PlayEvent) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, play := range plays {
		id := play.PrimaryArtistID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// rollingMeanDelta is the trailing mean over the last window values minus the
// trailing mean at the first index where a full window exists. NaN when the
// series is shorter than the window.
func rollingMeanDelta(series []float64, window int) float64 {
	if len(series) < window {
		return math.NaN()
	}
	return mean(series[len(series)-window:]) - mean(series[:window])
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// countTopGenres tallies genres across the top-artist snapshots and keeps the
// limit most common, first-seen order breaking count ties.
func countTopGenres(artists []ArtistSnapshot, limit int) []GenreCount {
	counts := make(map[string]int)
	var order []string
	for _, artist := range artists {
		for _, genre := range artist.Genres {
			if counts[genre] == 0 {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}

	tally := make([]GenreCount, 0, len(order))
	for _, genre := range order {
		tally = append(tally, GenreCount{Genre: genre, Count: counts[genre]})
	}
	sort.SliceStable(tally, func(i, j int) bool {
		return tally[i].Count > tally[j].Count
	})

	if len(tally) > limit {
		tally = tally[:limit]
	}
	return tally
}

// emergingGenres resolves the primary artists' genres in one batched lookup
// and keeps those absent from the established set, de-duplicated, in
// first-encountered order, capped at maxEmergingGenres.
func emergingGenres(primaryArtistIDs []string, topArtists []ArtistSnapshot, lookup GenreLookupFunc) ([]string, error) {
	if len(primaryArtistIDs) == 0 {
		return nil, nil
	}

	genresByArtist, err := lookup(primaryArtistIDs)
	if err != nil {
		return nil, fmt.Errorf("looking up recent-play genres: %w", err)
	}

	established := make(map[string]bool)
	for _, artist := range topArtists {
		for _, genre := range artist.Genres {
			established[genre] = true
		}
	}

	seen := make(map[string]bool)
	var emerging []string
	for _, id := range primaryArtistIDs {
		for _, genre := range genresByArtist[id] {
			if established[genre] || seen[genre] {
				continue
			}
			seen[genre] = true
			emerging = append(emerging, genre)
			if len(emerging) == maxEmergingGenres {
				return emerging, nil
			}
		}
	}
	return emerging, nil
}

// trendMessages turns the deltas into user-facing suggestions. Rules are
// checked in a fixed order and every applicable rule fires. NaN deltas match
// neither comparison, so a short series yields only the genre message, if
// any.
func trendMessages(trends FeatureTrends, emerging []string) []string {
	var messages []string

	if trends.Energy > 0 {
		messages = append(messages, "You've been listening to more energetic music lately. Try out some upbeat dance or rock tracks!")
	}
	if trends.Valence < 0 {
		messages = append(messages, "Your music choices have been a bit more melancholic recently. How about some uplifting pop or feel-good indie tracks?")
	}
	if len(emerging) > 0 {
		named := emerging
		if len(named) > 3 {
			named = named[:3]
		}
		messages = append(messages, fmt.Sprintf(
			"You're exploring new genres like %s. Keep discovering with similar artists in these genres!",
			strings.Join(named, ", ")))
	}

	return messages
}
