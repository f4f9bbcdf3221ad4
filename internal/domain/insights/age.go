package insights

const unknownKey = "unknown"

type bracket struct {
	Key       string
	Label     string
	MaxMonths int // exclusive
}

var ageBrackets = []bracket{
	{Key: "0-2", Label: "Under 3", MaxMonths: 36},
	{Key: "3-4", Label: "3 to 4 years", MaxMonths: 60},
	{Key: "5-6", Label: "5 to 6 years", MaxMonths: 84},
	{Key: "7-9", Label: "7 to 9 years", MaxMonths: 120},
	{Key: "10-12", Label: "10 to 12 years", MaxMonths: 156},
	{Key: "13+", Label: "13 and older", MaxMonths: -1},
}

// AgeBracket maps an age in months to its bracket. Nil ages are "unknown".
func AgeBracket(months *int) Bucket {
	if months == nil || *months < 0 {
		return Bucket{Key: unknownKey, Label: "Unknown age"}
	}
	for _, b := range ageBrackets {
		if b.MaxMonths < 0 || *months < b.MaxMonths {
			return Bucket{Key: b.Key, Label: b.Label}
		}
	}
	last := ageBrackets[len(ageBrackets)-1]
	return Bucket{Key: last.Key, Label: last.Label}
}
