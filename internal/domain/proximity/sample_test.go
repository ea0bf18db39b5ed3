package proximity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestClassify verifies that only an exact zero is treated as near.
func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  float64
		want Distance
	}{
		{raw: 0, want: Near},
		{raw: math.Copysign(0, -1), want: Near},
		{raw: 5, want: Far},
		{raw: 1, want: Far},
		{raw: 0.0001, want: Far},
		{raw: -0.0001, want: Far},
		{raw: -3, want: Far},
		{raw: math.Inf(1), want: Far},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(tc.raw), "raw=%g signbit=%t", tc.raw, math.Signbit(tc.raw))
	}

	require.Equal(t, Far, Classify(math.NaN()))
}

// TestSample_Near checks the convenience helpers on Sample.
func TestSample_Near(t *testing.T) {
	t.Parallel()

	require.True(t, NewSample(0).Near())
	require.False(t, NewSample(8).Near())
	require.Equal(t, "near (raw=0)", NewSample(0).String())
	require.Equal(t, "far", Far.String())
}

// TestCountdownText checks the label rendering for whole and partial seconds.
func TestCountdownText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Time left for selfdistruction 9", CountdownText(9*time.Second))
	require.Equal(t, "Time left for selfdistruction 0", CountdownText(0))
	require.Equal(t, "Time left for selfdistruction 4", CountdownText(4999*time.Millisecond))
}

// TestImageKnown verifies the set of renderable images.
func TestImageKnown(t *testing.T) {
	t.Parallel()

	require.True(t, ImageEmoji.Known())
	require.True(t, InitialDisplayState().Image.Known())
	require.False(t, Image("kitten").Known())
}
