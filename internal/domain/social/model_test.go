package social

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestSocialRowsCascadeWithArtwork(t *testing.T) {
	cache := &sync.Map{}

	for _, model := range []interface{}{&Reaction{}, &Comment{}} {
		s, err := schema.Parse(model, cache, schema.NamingStrategy{})
		require.NoError(t, err)

		rel, ok := s.Relationships.Relations["Artwork"]
		require.True(t, ok, "%s has no artwork relation", s.Table)

		c := rel.ParseConstraint()
		require.NotNil(t, c, "%s has no artwork constraint", s.Table)
		assert.Equal(t, "artworks", c.ReferenceSchema.Table)
		assert.Equal(t, "CASCADE", c.OnDelete)
		require.Len(t, c.ForeignKeys, 1)
		assert.Equal(t, "artwork_id", c.ForeignKeys[0].DBName)
	}
}

func TestValidEmoji(t *testing.T) {
	for _, e := range Emojis {
		assert.True(t, ValidEmoji(e))
	}
	assert.False(t, ValidEmoji("thumbsdown"))
	assert.False(t, ValidEmoji(""))
}
