// Package summary turns a user's recently-played feed and top-item snapshots
// into the derived seasonal listening report.
package summary

// PlayEvent is one entry from the recently-played feed. PlayedAt is kept as
// the raw upstream timestamp string; the aggregators parse it and fail loudly
// on malformed input.
type PlayEvent struct {
	TrackID     string   `json:"track_id"`
	TrackName   string   `json:"track_name"`
	ArtistNames []string `json:"artist_names"`
	ArtistIDs   []string `json:"artist_ids"`
	AlbumName   string   `json:"album_name"`
	Popularity  int      `json:"popularity"`
	PlayedAt    string   `json:"played_at"`
}

// PrimaryArtistID returns the first-credited artist, or "" for a track with
// no artist data.
func (p PlayEvent) PrimaryArtistID() string {
	if len(p.ArtistIDs) == 0 {
		return ""
	}
	return p.ArtistIDs[0]
}

// ArtistSnapshot is one artist from the "top artists" snapshot call.
type ArtistSnapshot struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
	ImageURL   string   `json:"image_url,omitempty"`
}

// TrackSnapshot is one track from a "top tracks" or recommendations call.
type TrackSnapshot struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Popularity int    `json:"popularity"`
}

// AudioFeatures carries the per-track numeric descriptors the trend analysis
// works over. Values are in [0, 1].
type AudioFeatures struct {
	ID           string  `json:"id"`
	Danceability float64 `json:"danceability"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
}

// ArtistStat is the per-artist row of the report: a snapshot artist enriched
// with recent-window stream counts.
type ArtistStat struct {
	Name             string   `json:"name"`
	Popularity       int      `json:"popularity"`
	Genres           []string `json:"genres"`
	ImageURL         string   `json:"image_url,omitempty"`
	Streams          int      `json:"streams"`
	MostPopularTrack string   `json:"most_popular_track"`
}

// TrackStat is the per-track row of the report.
type TrackStat struct {
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Popularity int    `json:"popularity"`
}

// HourlyBucket counts plays in one hour of the day. Hours with zero plays are
// omitted by the aggregation, matching the grouping behavior this report has
// always had.
type HourlyBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DateHourBucket counts plays in one hour of one calendar date.
type DateHourBucket struct {
	Date  string `json:"date"`
	Hour  int    `json:"hour"`
	Count int    `json:"count"`
}

// ListeningHabits is the histogram pair driving the habit charts.
type ListeningHabits struct {
	Hourly     []HourlyBucket   `json:"hourly"`
	DateRange  []DateHourBucket `json:"date_range_data"`
	TotalPlays int              `json:"total_plays"`
}

// FeatureTrends holds the rolling-mean deltas. A delta is NaN when fewer than
// RollingWindow plays were available.
type FeatureTrends struct {
	Danceability float64 `json:"danceability"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
}

// GenreCount is one entry of the established top-genre tally.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// TrendAnalysis is the listening-trend section of the report.
type TrendAnalysis struct {
	TopGenres       []GenreCount  `json:"top_genres"`
	FeatureTrends   FeatureTrends `json:"feature_trends"`
	EmergingGenres  []string      `json:"emerging_genres"`
	Recommendations []string      `json:"recommendations"`
}

// PlaylistRef points at the generated playlist.
type PlaylistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SeasonalReport is the assembled, request-scoped report value.
type SeasonalReport struct {
	TopArtists        []ArtistStat    `json:"top_artists"`
	TopTracks         []TrackStat     `json:"top_tracks"`
	RecommendedTracks []TrackStat     `json:"recommended_tracks"`
	Playlist          *PlaylistRef    `json:"playlist,omitempty"`
	AveragePopularity float64         `json:"average_popularity"`
	Habits            ListeningHabits `json:"listening_habits"`
	Trends            TrendAnalysis   `json:"listening_trends"`
}
