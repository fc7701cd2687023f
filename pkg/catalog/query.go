package catalog

import (
	"slices"
	"strings"
	"time"
)

// Criteria are ANDed. Empty sets and nil dates do not filter.
type Criteria struct {
	Text     string
	Stores   []string
	Versions []string
	Tags     []string
	From     *time.Time
	To       *time.Time
}

func (c Criteria) IsZero() bool {
	return c.Text == "" && len(c.Stores) == 0 && len(c.Versions) == 0 &&
		len(c.Tags) == 0 && c.From == nil && c.To == nil
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, values ...string) bool {
	for _, v := range values {
		if _, ok := set[strings.ToLower(v)]; ok {
			return true
		}
	}
	return false
}

func (d ManagedDocument) matchesText(needle string) bool {
	fields := []string{d.DisplayName, d.Name, d.StoreDisplayName, d.Version, d.Notes}
	if d.Category != nil {
		fields = append(fields, *d.Category)
	}
	fields = append(fields, d.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Filter returns the documents matching c, in input order.
func Filter(docs []ManagedDocument, c Criteria) []ManagedDocument {
	needle := strings.ToLower(strings.TrimSpace(c.Text))
	stores, versions, tags := toSet(c.Stores), toSet(c.Versions), toSet(c.Tags)

	out := make([]ManagedDocument, 0, len(docs))
	for _, d := range docs {
		if needle != "" && !d.matchesText(needle) {
			continue
		}
		if stores != nil && !inSet(stores, d.StoreName, d.StoreDisplayName) {
			continue
		}
		if versions != nil && !inSet(versions, d.Version) {
			continue
		}
		if tags != nil && !inSet(tags, d.Tags...) {
			continue
		}
		if c.From != nil && d.LastModified.Before(*c.From) {
			continue
		}
		if c.To != nil && d.LastModified.After(*c.To) {
			continue
		}
		out = append(out, d)
	}
	return out
}

type SortKey string

const (
	SortName         SortKey = "name"
	SortStore        SortKey = "store"
	SortVersion      SortKey = "version"
	SortCategory     SortKey = "category"
	SortLastModified SortKey = "last_modified"
	SortCreated      SortKey = "created"
	SortSize         SortKey = "size"
)

// SortKeys lists the accepted keys, for request validation.
var SortKeys = []SortKey{SortName, SortStore, SortVersion, SortCategory, SortLastModified, SortCreated, SortSize}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func comparator(key SortKey) func(a, b ManagedDocument) int {
	switch key {
	case SortStore:
		return func(a, b ManagedDocument) int { return compareFold(a.StoreDisplayName, b.StoreDisplayName) }
	case SortVersion:
		return func(a, b ManagedDocument) int { return CompareVersions(a.Version, b.Version) }
	case SortCategory:
		return func(a, b ManagedDocument) int {
			var ac, bc string
			if a.Category != nil {
				ac = *a.Category
			}
			if b.Category != nil {
				bc = *b.Category
			}
			return compareFold(ac, bc)
		}
	case SortLastModified:
		return func(a, b ManagedDocument) int { return compareTime(a.LastModified, b.LastModified) }
	case SortCreated:
		return func(a, b ManagedDocument) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	case SortSize:
		return func(a, b ManagedDocument) int { return compareInt(a.SizeBytes, b.SizeBytes) }
	default:
		return func(a, b ManagedDocument) int { return compareFold(a.DisplayName, b.DisplayName) }
	}
}

// Sort returns a sorted copy. Equal elements keep their input order in both
// directions.
func Sort(docs []ManagedDocument, key SortKey, dir Direction) []ManagedDocument {
	out := slices.Clone(docs)
	cmp := comparator(key)
	if dir == Desc {
		slices.SortStableFunc(out, func(a, b ManagedDocument) int { return cmp(b, a) })
	} else {
		slices.SortStableFunc(out, cmp)
	}
	return out
}
