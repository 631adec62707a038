package commands

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FireRedz/gulag/internal/bancho"
	"github.com/FireRedz/gulag/internal/constants"
)

func testPlayer(priv constants.Privileges) *bancho.Player {
	return &bancho.Player{ID: 100, Name: "alice", Priv: priv}
}

func TestProcessIgnoresUnprefixed(t *testing.T) {
	pr := New(nil, "!")

	res, handled := pr.Process(context.Background(), testPlayer(constants.PrivNormal), "#osu", "hello there")
	assert.False(t, handled)
	assert.Nil(t, res)
}

func TestProcessUnknownCommandHidden(t *testing.T) {
	pr := New(nil, "!")

	res, handled := pr.Process(context.Background(), testPlayer(constants.PrivNormal), "#osu", "!nosuchcmd")
	assert.True(t, handled)
	assert.Nil(t, res)
}

func TestProcessPrivilegeGate(t *testing.T) {
	pr := New(nil, "!")

	// Admin commands look nonexistent to normal players.
	res, handled := pr.Process(context.Background(), testPlayer(constants.PrivNormal), "#osu", "!alert hi")
	assert.True(t, handled)
	assert.Nil(t, res)
}

func TestRoll(t *testing.T) {
	pr := New(nil, "!")

	res, handled := pr.Process(context.Background(), testPlayer(constants.PrivNormal), "#osu", "!roll")
	require.True(t, handled)
	require.NotNil(t, res)
	assert.True(t, res.Public)
	assert.Regexp(t, regexp.MustCompile(`^alice rolls \d+ points!$`), res.Resp)

	// An explicit die size bounds the result.
	for range 20 {
		res, _ = pr.Process(context.Background(), testPlayer(constants.PrivNormal), "#osu", "!roll 6")
		require.NotNil(t, res)
		assert.Regexp(t, regexp.MustCompile(`^alice rolls [0-5] points!$`), res.Resp)
	}
}

func TestHelpListsOnlyRunnableCommands(t *testing.T) {
	pr := New(nil, "!")

	res, handled := pr.Process(context.Background(), testPlayer(constants.PrivNormal), "#osu", "!help")
	require.True(t, handled)
	require.NotNil(t, res)
	assert.False(t, res.Public)
	assert.Contains(t, res.Resp, "!roll")
	assert.NotContains(t, res.Resp, "!alert")

	res, _ = pr.Process(context.Background(), testPlayer(constants.PrivNormal|constants.PrivAdmin), "#osu", "!HELP")
	require.NotNil(t, res)
	assert.Contains(t, res.Resp, "!alert")
}
