package catalog

const RecentLimit = 10

type Stats struct {
	TotalDocuments int               `json:"total_documents"`
	TotalBytes     int64             `json:"total_bytes"`
	ByStore        map[string]int    `json:"by_store"`
	ByVersion      map[string]int    `json:"by_version"`
	Recent         []ManagedDocument `json:"recent"`
}

// AggregateStats counts documents per store display name and per version,
// sums sizes and picks the most recently modified documents.
func AggregateStats(docs []ManagedDocument) Stats {
	stats := Stats{
		TotalDocuments: len(docs),
		ByStore:        make(map[string]int),
		ByVersion:      make(map[string]int),
	}
	for _, d := range docs {
		stats.TotalBytes += d.SizeBytes
		stats.ByStore[d.StoreDisplayName]++
		stats.ByVersion[d.Version]++
	}

	recent := Sort(docs, SortLastModified, Desc)
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	stats.Recent = recent
	return stats
}
