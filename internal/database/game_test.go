package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalPayloadNeverNull(t *testing.T) {
	b, err := marshalPayload(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))

	b, err = marshalPayload(map[string]interface{}{"targetId": "p2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"targetId":"p2"}`, string(b))
}

func TestSchemaDefinesHistoryTables(t *testing.T) {
	for _, table := range []string{"games", "game_actions", "game_results"} {
		assert.True(t, strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
}
