package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestUserIndexes(t *testing.T) {
	indexes := UserIndexes()
	require.Len(t, indexes, 4)

	keys := make(map[string]any, len(indexes))
	for _, idx := range indexes {
		d, ok := idx.Keys.(bson.D)
		require.True(t, ok)
		require.Len(t, d, 1)
		keys[d[0].Key] = d[0].Value
	}

	assert.Equal(t, map[string]any{
		"email":                  1,
		"logros.id":              1,
		"logros.completado":      1,
		"rutasCompletadas.fecha": -1,
	}, keys)
}
