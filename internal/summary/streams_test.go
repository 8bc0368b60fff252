package summary

import "testing"

func TestCountStreamsScenario(t *testing.T) {
	// Three plays: X (pop 10), Y (pop 20), X again (pop 50).
	plays := []PlayEvent{
		{TrackName: "First X Track", ArtistNames: []string{"X"}, Popularity: 10},
		{TrackName: "Y Track", ArtistNames: []string{"Y"}, Popularity: 20},
		{TrackName: "Big X Track", ArtistNames: []string{"X"}, Popularity: 50},
	}
	snapshots := []ArtistSnapshot{
		{Name: "X", Popularity: 80},
		{Name: "Y", Popularity: 70},
	}

	stats := CountStreams(plays, snapshots)
	if len(stats) != 2 {
		t.Fatalf("got %d stats, want 2", len(stats))
	}

	if stats[0].Name != "X" || stats[1].Name != "Y" {
		t.Errorf("order = [%s, %s], want [X, Y]", stats[0].Name, stats[1].Name)
	}
	if stats[0].Streams != 2 {
		t.Errorf("X streams = %d, want 2", stats[0].Streams)
	}
	if stats[0].MostPopularTrack != "Big X Track" {
		t.Errorf("X most popular = %q, want %q", stats[0].MostPopularTrack, "Big X Track")
	}
	if stats[1].Streams != 1 {
		t.Errorf("Y streams = %d, want 1", stats[1].Streams)
	}
	if stats[1].MostPopularTrack != "Y Track" {
		t.Errorf("Y most popular = %q, want %q", stats[1].MostPopularTrack, "Y Track")
	}
}

func TestCountStreamsOneStatPerSnapshot(t *testing.T) {
	plays := makePlays(5, "a")
	snapshots := []ArtistSnapshot{
		{Name: "Nobody Played"},
		{Name: "Also Unplayed"},
		{Name: "Still Unplayed"},
	}

	stats := CountStreams(plays, snapshots)
	if len(stats) != len(snapshots) {
		t.Fatalf("got %d stats, want %d", len(stats), len(snapshots))
	}
	for _, stat := range stats {
		if stat.Streams < 1 {
			t.Errorf("%s streams = %d, want >= 1", stat.Name, stat.Streams)
		}
		if stat.MostPopularTrack != NotAvailable {
			t.Errorf("%s most popular = %q, want sentinel", stat.Name, stat.MostPopularTrack)
		}
	}
}

func TestCountStreamsMultiArtistCredit(t *testing.T) {
	plays := []PlayEvent{
		{TrackName: "Collab", ArtistNames: []string{"A", "B"}, Popularity: 60},
	}
	snapshots := []ArtistSnapshot{{Name: "A"}, {Name: "B"}}

	stats := CountStreams(plays, snapshots)
	for _, stat := range stats {
		if stat.Streams != 1 {
			t.Errorf("%s streams = %d, want 1", stat.Name, stat.Streams)
		}
		if stat.MostPopularTrack != "Collab" {
			t.Errorf("%s most popular = %q, want Collab", stat.Name, stat.MostPopularTrack)
		}
	}
}

func TestCountStreamsPopularityTieKeepsFirst(t *testing.T) {
	plays := []PlayEvent{
		{TrackName: "Seen First", ArtistNames: []string{"X"}, Popularity: 40},
		{TrackName: "Seen Second", ArtistNames: []string{"X"}, Popularity: 40},
	}
	snapshots := []ArtistSnapshot{{Name: "X"}}

	stats := CountStreams(plays, snapshots)
	if stats[0].MostPopularTrack != "Seen First" {
		t.Errorf("most popular = %q, want first-seen on tie", stats[0].MostPopularTrack)
	}
}

func TestCountStreamsStableSortOnTies(t *testing.T) {
	// Neither artist has plays; both clamp to 1. Snapshot order must hold.
	snapshots := []ArtistSnapshot{
		{Name: "First In Snapshot"},
		{Name: "Second In Snapshot"},
		{Name: "Third In Snapshot"},
	}

	stats := CountStreams(nil, snapshots)
	for i, snap := range snapshots {
		if stats[i].Name != snap.Name {
			t.Errorf("stats[%d] = %s, want %s (stable tie order)", i, stats[i].Name, snap.Name)
		}
	}
}
