package summary

// RecentPage is one page of the recently-played feed, in upstream order
// (reverse-chronological).
type RecentPage struct {
	Items      []PlayEvent
	HasMore    bool
	LastCursor string
}

// FetchPageFunc requests one page of recent plays. An empty after cursor
// means the newest page.
type FetchPageFunc func(after string) (RecentPage, error)

// FetchAllRecentPlays drains the cursor-paginated feed into one slice, in
// fetch order. A page shorter than pageSize is treated as the last page
// regardless of what the upstream claims, as is a page with no more data or
// no cursor to resume from; refetching the newest page with an empty cursor
// would loop forever. Errors propagate immediately with no partial result.
func FetchAllRecentPlays(fetch FetchPageFunc, pageSize int) ([]PlayEvent, error) {
	var all []PlayEvent
	after := ""

	for {
		page, err := fetch(after)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if len(page.Items) < pageSize || !page.HasMore || page.LastCursor == "" {
			break
		}
		after = page.LastCursor
	}

	return all, nil
}
