package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simverse/rewind/internal/testutil"
	"github.com/simverse/rewind/internal/world"
)

// fixtureRecording builds a small recording directory: two entities
// created at t=1s, one removed at t=2s.
func fixtureRecording(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "run1")
	deltas := []testutil.TimedDelta{
		{Time: 1 * time.Second, Delta: testutil.MapDelta(
			testutil.Created(1, "ground"),
			testutil.Created(2, "cart"),
		)},
		{Time: 2 * time.Second, Delta: testutil.MapDelta(
			testutil.Removed(2),
		)},
	}
	require.NoError(t, testutil.WriteRecordingDir(context.Background(), dir, deltas))
	return dir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInfoCommand_Text(t *testing.T) {
	dir := fixtureRecording(t)

	out, err := runCommand(t, "info", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "state.tlog")
	assert.Contains(t, out, "start:    0.000s")
	assert.Contains(t, out, "end:      2.000s")
	assert.Contains(t, out, "messages: 3")
	assert.Contains(t, out, world.MsgDeltaMap)
	assert.Contains(t, out, world.MsgWorldDescription)
}

func TestInfoCommand_JSON(t *testing.T) {
	dir := fixtureRecording(t)

	out, err := runCommand(t, "info", dir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   InfoResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(3), resp.Data.Messages)
	assert.Equal(t, 2.0, resp.Data.EndSecs)
	assert.Equal(t, int64(2), resp.Data.ByType[world.MsgDeltaMap])
}

func TestInfoCommand_MissingRecording(t *testing.T) {
	_, err := runCommand(t, "info", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDigestCommand_Deterministic(t *testing.T) {
	dir := fixtureRecording(t)

	first, err := runCommand(t, "digest", dir, "--format", "json")
	require.NoError(t, err)
	second, err := runCommand(t, "digest", dir, "--format", "json")
	require.NoError(t, err)

	var a, b struct {
		Data DigestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &a))
	require.NoError(t, json.Unmarshal([]byte(second), &b))

	assert.Equal(t, a.Data.Digest, b.Data.Digest)
	assert.Equal(t, 1, a.Data.Entities, "cart was removed, ground remains")
	assert.Len(t, a.Data.Digest, 64)
}

func TestPlayCommand_RunsToEnd(t *testing.T) {
	dir := fixtureRecording(t)

	digestOut, err := runCommand(t, "digest", dir, "--format", "json")
	require.NoError(t, err)
	var want struct {
		Data DigestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(digestOut), &want))

	playOut, err := runCommand(t, "play", dir, "--format", "json", "--tick", "500", "--rate", "1000")
	require.NoError(t, err)
	var got struct {
		Status string     `json:"status"`
		Data   PlayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(playOut), &got))

	assert.Equal(t, "ok", got.Status)
	assert.GreaterOrEqual(t, got.Data.Ticks, 4, "2s log at 500ms ticks")
	assert.GreaterOrEqual(t, got.Data.FinalTime, 2.0)
	assert.Equal(t, want.Data.Digest, got.Data.Digest, "tick-by-tick playback matches single-window replay")
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	dir := fixtureRecording(t)

	_, err := runCommand(t, "info", dir, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
