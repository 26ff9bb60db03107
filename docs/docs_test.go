package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocRegistered(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(doc)))

	var parsed struct {
		Info  map[string]interface{} `json:"info"`
		Paths map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "Shortlink API", parsed.Info["title"])
	assert.Contains(t, parsed.Paths, "/api/v1/shorten")
	assert.Contains(t, parsed.Paths, "/{short_code}")
}
