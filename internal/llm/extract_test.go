package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPlainObject(t *testing.T) {
	out, err := ExtractJSON(`{"meetings": [], "tasks": []}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"meetings": [], "tasks": []}`, out)
}

func TestExtractJSONCodeFence(t *testing.T) {
	raw := "```json\n{\"meetings\": [{\"description\": \"lecture\"}]}\n```"
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, "lecture")
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	raw := "Sure, here is the schedule you asked for:\n{\"tasks\": []}\nLet me know if you need anything else."
	out, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks": []}`, out)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON("I could not produce a schedule.")
	require.Error(t, err)

	_, err = ExtractJSON("")
	require.Error(t, err)
}
