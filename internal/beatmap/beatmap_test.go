package beatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullNameAndEmbed(t *testing.T) {
	b := &Beatmap{
		ID:      123,
		Artist:  "xi",
		Title:   "Blue Zenith",
		Version: "FOUR DIMENSIONS",
	}

	assert.Equal(t, "xi - Blue Zenith [FOUR DIMENSIONS]", b.FullName())
	assert.Equal(t, "https://osu.ppy.sh/b/123", b.URL())
	assert.Equal(t, "[https://osu.ppy.sh/b/123 xi - Blue Zenith [FOUR DIMENSIONS]]", b.Embed())
}

func TestPPString(t *testing.T) {
	b := &Beatmap{
		ID:       1,
		Artist:   "a",
		Title:    "t",
		Version:  "v",
		PPValues: [5]float64{100, 150, 200, 250, 300},
	}

	assert.Equal(t,
		"[https://osu.ppy.sh/b/1 a - t [v]] | 90%: 100pp, 95%: 150pp, 98%: 200pp, 99%: 250pp, 100%: 300pp",
		b.PPString(),
	)
}

func TestParseNowPlaying(t *testing.T) {
	bid, ok := ParseNowPlaying("\x01ACTION is playing [https://osu.ppy.sh/b/123 xi - Blue Zenith [FOUR DIMENSIONS]]\x01")
	assert.True(t, ok)
	assert.Equal(t, int32(123), bid)

	bid, ok = ParseNowPlaying("\x01ACTION is listening to [https://osu.ppy.sh/b/77 a - b [c]]\x01")
	assert.True(t, ok)
	assert.Equal(t, int32(77), bid)

	_, ok = ParseNowPlaying("just a regular message")
	assert.False(t, ok)

	// Set links (/s/) aren't map references.
	_, ok = ParseNowPlaying("\x01ACTION is playing [https://osu.ppy.sh/s/123 some set]\x01")
	assert.False(t, ok)
}
