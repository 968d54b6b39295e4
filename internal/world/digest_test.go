package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest_IndependentOfBuildOrder(t *testing.T) {
	a := New()
	a.SetName(1, "box")
	a.SetPose(1, Pose{X: 1.5})
	a.SetName(2, "sphere")
	a.SetGeometry(2, Geometry{Kind: GeometrySphere, Size: 0.5})

	b := New()
	b.SetGeometry(2, Geometry{Kind: GeometrySphere, Size: 0.5})
	b.SetName(2, "sphere")
	b.SetPose(1, Pose{X: 1.5})
	b.SetName(1, "box")

	assert.Equal(t, Digest(a), Digest(b))
}

func TestDigest_SensitiveToState(t *testing.T) {
	a := New()
	a.SetName(1, "box")

	b := New()
	b.SetName(1, "box")
	assert.Equal(t, Digest(a), Digest(b))

	b.SetName(1, "crate")
	assert.NotEqual(t, Digest(a), Digest(b))

	c := New()
	c.SetName(2, "box")
	assert.NotEqual(t, Digest(a), Digest(c), "same components on a different entity differ")
}

func TestDigest_EmptyWorldStable(t *testing.T) {
	assert.Equal(t, Digest(New()), Digest(New()))
}

func TestDigest_IncludesStats(t *testing.T) {
	a := New()
	b := New()
	b.SetPlaybackStats(PlaybackStats{EndSec: 10})

	assert.NotEqual(t, Digest(a), Digest(b))
}

func TestDigest_UnicodeNormalization(t *testing.T) {
	// U+00E9 vs e + U+0301 are the same text after NFC.
	a := New()
	a.SetName(1, "café")

	b := New()
	b.SetName(1, "café")

	assert.Equal(t, Digest(a), Digest(b))
}
