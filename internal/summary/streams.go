package summary

import "sort"

// NotAvailable is the sentinel track name for an artist with no observed
// plays in the recent window.
const NotAvailable = "Not available"

type topTrackCandidate struct {
	name       string
	popularity int
}

// CountStreams enriches the top-artist snapshots with recent-window play
// counts and each artist's most popular recently-played track.
//
// Every artist credited on a play gets one stream for it. The most-popular
// candidate is only replaced by a strictly greater popularity, so ties go to
// the first-seen track. Output carries one ArtistStat per snapshot, stream
// counts clamped to at least 1, sorted descending by streams with snapshot
// order preserved on ties.
func CountStreams(plays []PlayEvent, snapshots []ArtistSnapshot) []ArtistStat {
	streams := make(map[string]int)
	topTrack := make(map[string]topTrackCandidate)

	for _, play := range plays {
		for _, artist := range play.ArtistNames {
			streams[artist]++
			if play.Popularity > topTrack[artist].popularity {
				topTrack[artist] = topTrackCandidate{
					name:       play.TrackName,
					popularity: play.Popularity,
				}
			}
		}
	}

	stats := make([]ArtistStat, 0, len(snapshots))
	for _, snap := range snapshots {
		count := streams[snap.Name]
		if count < 1 {
			count = 1
		}

		best := topTrack[snap.Name].name
		if best == "" {
			best = NotAvailable
		}

		stats = append(stats, ArtistStat{
			Name:             snap.Name,
			Popularity:       snap.Popularity,
			Genres:           snap.Genres,
			ImageURL:         snap.ImageURL,
			Streams:          count,
			MostPopularTrack: best,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Streams > stats[j].Streams
	})
	return stats
}
