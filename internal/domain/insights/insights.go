// Package insights builds the timeline, analytics and feed views from rows
// that were already loaded and authorized for one family.
package insights

import (
	"sort"
	"time"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/social"
)

const monthLayout = "2006-01"

// Bucket is one group and its size. Buckets of a grouping sum to the total.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type MonthGroup struct {
	Month    string             `json:"month"`
	Label    string             `json:"label"`
	Count    int                `json:"count"`
	Artworks []artworks.Artwork `json:"artworks"`
}

type Timeline struct {
	Total        int          `json:"total"`
	Months       []MonthGroup `json:"months"`
	ByChild      []Bucket     `json:"by_child"`
	ByAgeBracket []Bucket     `json:"by_age_bracket"`
}

type Analytics struct {
	Total               int      `json:"total"`
	Favorites           int      `json:"favorites"`
	Children            int      `json:"children"`
	ByChild             []Bucket `json:"by_child"`
	ByMonth             []Bucket `json:"by_month"`
	ByAgeBracket        []Bucket `json:"by_age_bracket"`
	Reactions           []Bucket `json:"reactions"`
	TotalReactions      int      `json:"total_reactions"`
	MostProductiveMonth *Bucket  `json:"most_productive_month"`
	TopTags             []Bucket `json:"top_tags"`
}

type FeedItem struct {
	Artwork      artworks.Artwork `json:"artwork"`
	ChildName    string           `json:"child_name"`
	Reactions    map[string]int   `json:"reactions"`
	MyReactions  []string         `json:"my_reactions"`
	CommentCount int              `json:"comment_count"`
}

func monthKey(t time.Time) string {
	return t.Format(monthLayout)
}

func monthLabel(t time.Time) string {
	return t.Format("January 2006")
}

// GroupByMonth groups by created date month, newest month first. Order inside
// a month is preserved.
func GroupByMonth(items []artworks.Artwork) []MonthGroup {
	idx := map[string]int{}
	var groups []MonthGroup

	for _, a := range items {
		key := monthKey(a.CreatedDate)
		i, ok := idx[key]
		if !ok {
			i = len(groups)
			idx[key] = i
			groups = append(groups, MonthGroup{Month: key, Label: monthLabel(a.CreatedDate)})
		}
		groups[i].Artworks = append(groups[i].Artworks, a)
		groups[i].Count++
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Month > groups[j].Month })
	return groups
}

// CountByMonth is GroupByMonth without the rows, oldest month first.
func CountByMonth(items []artworks.Artwork) []Bucket {
	groups := GroupByMonth(items)
	out := make([]Bucket, 0, len(groups))
	for i := len(groups) - 1; i >= 0; i-- {
		out = append(out, Bucket{Key: groups[i].Month, Label: groups[i].Label, Count: groups[i].Count})
	}
	return out
}

// CountByChild counts per child, largest first. Rows whose child is not in
// kids are counted under "unknown".
func CountByChild(items []artworks.Artwork, kids []children.Child) []Bucket {
	names := make(map[string]string, len(kids))
	for _, k := range kids {
		names[k.ID] = k.Name
	}

	counts := map[string]int{}
	for _, a := range items {
		key := a.ChildID
		if _, ok := names[key]; !ok {
			key = unknownKey
		}
		counts[key]++
	}

	out := make([]Bucket, 0, len(counts))
	for key, n := range counts {
		label := names[key]
		if key == unknownKey {
			label = "Unknown"
		}
		out = append(out, Bucket{Key: key, Label: label, Count: n})
	}
	sortBuckets(out)
	return out
}

// CountByAgeBracket counts per age bracket in bracket order, empty brackets
// omitted.
func CountByAgeBracket(items []artworks.Artwork) []Bucket {
	counts := map[string]int{}
	for _, a := range items {
		counts[AgeBracket(a.ChildAgeMonths).Key]++
	}

	out := make([]Bucket, 0, len(counts))
	for _, b := range ageBrackets {
		if n := counts[b.Key]; n > 0 {
			out = append(out, Bucket{Key: b.Key, Label: b.Label, Count: n})
		}
	}
	if n := counts[unknownKey]; n > 0 {
		out = append(out, Bucket{Key: unknownKey, Label: "Unknown age", Count: n})
	}
	return out
}

// CountReactions returns one bucket per known emoji, in display order,
// including zero counts.
func CountReactions(reactions []social.Reaction) []Bucket {
	counts := map[string]int{}
	for _, r := range reactions {
		counts[r.Emoji]++
	}
	out := make([]Bucket, 0, len(social.Emojis))
	for _, e := range social.Emojis {
		out = append(out, Bucket{Key: e, Label: e, Count: counts[e]})
	}
	return out
}

// MostProductiveMonth returns the month with most artworks. Ties go to the
// most recent month. Nil for no rows.
func MostProductiveMonth(items []artworks.Artwork) *Bucket {
	var best *Bucket
	for _, g := range GroupByMonth(items) {
		if best == nil || g.Count > best.Count {
			best = &Bucket{Key: g.Month, Label: g.Label, Count: g.Count}
		}
	}
	return best
}

// TopTags counts user and AI tags together, largest first, at most limit.
func TopTags(items []artworks.Artwork, limit int) []Bucket {
	counts := map[string]int{}
	for _, a := range items {
		for _, t := range a.AllTags() {
			counts[t]++
		}
	}
	out := make([]Bucket, 0, len(counts))
	for t, n := range counts {
		out = append(out, Bucket{Key: t, Label: t, Count: n})
	}
	sortBuckets(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func BuildTimeline(items []artworks.Artwork, kids []children.Child) Timeline {
	return Timeline{
		Total:        len(items),
		Months:       GroupByMonth(items),
		ByChild:      CountByChild(items, kids),
		ByAgeBracket: CountByAgeBracket(items),
	}
}

func BuildAnalytics(items []artworks.Artwork, kids []children.Child, reactions []social.Reaction) Analytics {
	favorites := 0
	for _, a := range items {
		if a.IsFavorite {
			favorites++
		}
	}

	return Analytics{
		Total:               len(items),
		Favorites:           favorites,
		Children:            len(kids),
		ByChild:             CountByChild(items, kids),
		ByMonth:             CountByMonth(items),
		ByAgeBracket:        CountByAgeBracket(items),
		Reactions:           CountReactions(reactions),
		TotalReactions:      len(reactions),
		MostProductiveMonth: MostProductiveMonth(items),
		TopTags:             TopTags(items, 10),
	}
}

// BuildFeed decorates items with child names and social counts for viewer.
func BuildFeed(items []artworks.Artwork, kids []children.Child, reactions []social.Reaction, commentCounts map[string]int, viewerID string) []FeedItem {
	names := make(map[string]string, len(kids))
	for _, k := range kids {
		names[k.ID] = k.Name
	}

	perArtwork := map[string]map[string]int{}
	mine := map[string][]string{}
	for _, r := range reactions {
		if perArtwork[r.ArtworkID] == nil {
			perArtwork[r.ArtworkID] = map[string]int{}
		}
		perArtwork[r.ArtworkID][r.Emoji]++
		if r.UserID == viewerID {
			mine[r.ArtworkID] = append(mine[r.ArtworkID], r.Emoji)
		}
	}

	out := make([]FeedItem, 0, len(items))
	for _, a := range items {
		counts := perArtwork[a.ID]
		if counts == nil {
			counts = map[string]int{}
		}
		my := mine[a.ID]
		if my == nil {
			my = []string{}
		}
		out = append(out, FeedItem{
			Artwork:      a,
			ChildName:    names[a.ChildID],
			Reactions:    counts,
			MyReactions:  my,
			CommentCount: commentCounts[a.ID],
		})
	}
	return out
}

func sortBuckets(b []Bucket) {
	sort.Slice(b, func(i, j int) bool {
		if b[i].Count != b[j].Count {
			return b[i].Count > b[j].Count
		}
		return b[i].Label < b[j].Label
	})
}
