package artbook

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpeg(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(80, 40, color.NRGBA{G: 120, A: 255}), imaging.JPEG))
	return buf.Bytes()
}

func TestRender(t *testing.T) {
	var out bytes.Buffer
	err := Render(&out, Book{
		Title:    "The Rossi Family",
		Subtitle: "Art book · 2024",
		Pages: []Page{
			{Title: "Sunny day", Caption: "Mia, 3 years · May 2024", Image: jpeg(t)},
			{Title: "Broken", Caption: "no image", Image: []byte("nope")},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

func TestFit(t *testing.T) {
	w, h := fit(200, 100, 100, 100)
	assert.InDelta(t, 100, w, 0.001)
	assert.InDelta(t, 50, h, 0.001)

	w, h = fit(100, 400, 170, 200)
	assert.InDelta(t, 50, w, 0.001)
	assert.InDelta(t, 200, h, 0.001)
}
