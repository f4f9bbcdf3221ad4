package insights_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	insightsapi "kidcanvas/internal/api/insights"
	"kidcanvas/internal/domain/artworks"
)

func TestCaption(t *testing.T) {
	date := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	months := func(n int) *int { return &n }

	tests := []struct {
		name  string
		a     artworks.Artwork
		child string
		want  string
	}{
		{"full", artworks.Artwork{CreatedDate: date, ChildAgeMonths: months(51)}, "Mia", "Mia, 4 years · May 2024"},
		{"baby", artworks.Artwork{CreatedDate: date, ChildAgeMonths: months(18)}, "Leo", "Leo, 18 months · May 2024"},
		{"one month", artworks.Artwork{CreatedDate: date, ChildAgeMonths: months(1)}, "Leo", "Leo, 1 month · May 2024"},
		{"no age", artworks.Artwork{CreatedDate: date}, "Mia", "Mia · May 2024"},
		{"nothing", artworks.Artwork{CreatedDate: date}, "", "May 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, insightsapi.Caption(tt.a, tt.child))
		})
	}
}
