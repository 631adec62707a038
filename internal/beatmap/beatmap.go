// Package beatmap resolves beatmap metadata and the now-playing chat
// convention used to reference maps in messages.
package beatmap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PPAccuracies are the accuracy points a PP listing is quoted at.
var PPAccuracies = [5]float64{90, 95, 98, 99, 100}

// RankedStatus is a map's leaderboard standing.
type RankedStatus int32

const (
	StatusNotSubmitted RankedStatus = -1
	StatusPending      RankedStatus = 0
	StatusRanked       RankedStatus = 2
	StatusApproved     RankedStatus = 3
	StatusQualified    RankedStatus = 4
	StatusLoved        RankedStatus = 5
)

// Beatmap is one difficulty of a mapset.
type Beatmap struct {
	ID      int32
	SetID   int32
	MD5     string
	Artist  string
	Title   string
	Version string
	Creator string
	Status  RankedStatus

	TotalLength int32
	BPM         float64
	Stars       float64

	// PP estimates at PPAccuracies, same order.
	PPValues [5]float64
}

// FullName is the "Artist - Title [Version]" display form.
func (b *Beatmap) FullName() string {
	return fmt.Sprintf("%s - %s [%s]", b.Artist, b.Title, b.Version)
}

// URL is the map's website address.
func (b *Beatmap) URL() string {
	return fmt.Sprintf("https://osu.ppy.sh/b/%d", b.ID)
}

// Embed is the chat hyperlink form of the map.
func (b *Beatmap) Embed() string {
	return fmt.Sprintf("[%s %s]", b.URL(), b.FullName())
}

// PPString quotes the map's PP estimates across the standard accuracies.
func (b *Beatmap) PPString() string {
	parts := make([]string, 0, len(b.PPValues))
	for i, pp := range b.PPValues {
		parts = append(parts, fmt.Sprintf("%.0f%%: %.0fpp", PPAccuracies[i], pp))
	}
	return fmt.Sprintf("%s | %s", b.Embed(), strings.Join(parts, ", "))
}

// nowPlayingRE matches the /np action line the client sends, capturing
// the beatmap id.
var nowPlayingRE = regexp.MustCompile(
	`^\x01ACTION is (?:playing|editing|watching|listening to) \[https://osu\.[^/]+/b/(\d+) .+\]`,
)

// ParseNowPlaying extracts the beatmap id from a now-playing message.
func ParseNowPlaying(text string) (int32, bool) {
	m := nowPlayingRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	bid, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(bid), true
}
