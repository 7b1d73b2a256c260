package cli

import (
	"bytes"
	"io"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RECO_DATA_DIR", t.TempDir())
	t.Setenv("RECO_DATA_SEED_ON_EMPTY", "false")
	t.Setenv("RECO_LOGGING_LEVEL", "error")
	t.Setenv("RECO_LOGGING_FORMAT", "json")
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func decodeEnvelope(t *testing.T, out string) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &envelope), "output: %s", out)
	return envelope
}

func TestUserAddCommand(t *testing.T) {
	setTestEnv(t)

	out, err := runCommand(t, "user-add", "--name", "Alice Johnson")
	require.NoError(t, err)

	envelope := decodeEnvelope(t, out)
	assert.Equal(t, "success", envelope["status"])
	assert.Equal(t, float64(100), envelope["id"])
	assert.Equal(t, "Alice Johnson", envelope["name"])
}

func TestCommandsShareOnDiskState(t *testing.T) {
	setTestEnv(t)

	_, err := runCommand(t, "user-add", "--name", "Alice")
	require.NoError(t, err)
	_, err = runCommand(t, "product-add", "--name", "Keyboard", "--category", "Electronics", "--price", "99.99")
	require.NoError(t, err)
	_, err = runCommand(t, "review-add", "--user", "100", "--product", "1000", "--rating", "5", "--comment", "Great")
	require.NoError(t, err)

	out, err := runCommand(t, "product-list")
	require.NoError(t, err)

	var list ProductListResult
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Products, 1)
	assert.Equal(t, 1, list.Products[0].ReviewsCount)
}

func TestErrorEnvelopeAndExitSignal(t *testing.T) {
	setTestEnv(t)

	out, err := runCommand(t, "user-delete", "--id", "999")
	require.ErrorIs(t, err, ErrCommandFailed)

	envelope := decodeEnvelope(t, out)
	assert.Equal(t, "error", envelope["status"])
	assert.Equal(t, "User not found.", envelope["message"])
}

func TestInvalidRatingCommand(t *testing.T) {
	setTestEnv(t)

	_, err := runCommand(t, "user-add", "--name", "Alice")
	require.NoError(t, err)
	_, err = runCommand(t, "product-add", "--name", "Keyboard", "--category", "Electronics", "--price", "10")
	require.NoError(t, err)

	out, err := runCommand(t, "review-add", "--user", "100", "--product", "1000", "--rating", "6")
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Equal(t, "Invalid rating (1-5).", decodeEnvelope(t, out)["message"])
}

func TestInlineAddCommand(t *testing.T) {
	setTestEnv(t)

	out, err := runCommand(t, "add", "user", `{"name": "New User"}`)
	require.NoError(t, err)
	assert.Equal(t, "New User", decodeEnvelope(t, out)["name"])

	out, err = runCommand(t, "add", "widget", `{"name": "X"}`)
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Equal(t, "Invalid command or missing parameters.", decodeEnvelope(t, out)["message"])
}

func TestSeedCommand(t *testing.T) {
	setTestEnv(t)

	out, err := runCommand(t, "seed")
	require.NoError(t, err)
	assert.Equal(t, "Catalog seeded with default dataset.", decodeEnvelope(t, out)["message"])

	out, err = runCommand(t, "recommend", "--user", "100")
	require.NoError(t, err)

	// Alice's last review is the mouse and she has reviewed every
	// Electronics product in the seed, so the list is empty but the
	// envelope is still a success.
	var res RecommendationsResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "success", res.Status)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, "No new recommendations available in category Electronics.", res.Message)
}

func TestUnknownCommandIsNotAnEnvelope(t *testing.T) {
	setTestEnv(t)

	_, err := runCommand(t, "definitely-not-a-command")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCommandFailed)
}
