package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-audio-envelope/internal/testutil"
)

const (
	windowTolerance = 1e-10

	testWindowLength = 21
	testBeta         = 8.0
)

func TestKaiserWindow_Symmetry(t *testing.T) {
	tests := []struct {
		name   string
		length int
		beta   float64
	}{
		{"length_11_beta_5", 11, 5.0},
		{"length_21_beta_8", testWindowLength, testBeta},
		{"length_64_beta_3", 64, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := KaiserWindow(tt.length, tt.beta)
			assert.Len(t, w, tt.length)
			testutil.AssertSymmetric(t, w, windowTolerance)
		})
	}
}

func TestKaiserWindow_CenterTap(t *testing.T) {
	w := KaiserWindow(testWindowLength, testBeta)
	testutil.AssertCenterIsMax(t, w)
	assert.InDelta(t, 1.0, w[testWindowLength/2], windowTolerance)
}

func TestKaiserWindow_ZeroBetaIsRectangular(t *testing.T) {
	for _, v := range KaiserWindow(9, 0) {
		assert.InDelta(t, 1.0, v, windowTolerance)
	}
}

func TestKaiserWindow_EdgeCases(t *testing.T) {
	assert.Empty(t, KaiserWindow(0, testBeta))
	assert.Empty(t, KaiserWindow(-3, testBeta))
	assert.Equal(t, []float64{1.0}, KaiserWindow(1, testBeta))

	w := KaiserWindow(2, testBeta)
	require.Len(t, w, 2)
	assert.InDelta(t, w[0], w[1], windowTolerance)
}

func TestMakeWindow(t *testing.T) {
	for _, win := range Windows() {
		t.Run(string(win), func(t *testing.T) {
			w, err := MakeWindow(win, testWindowLength, testBeta)
			require.NoError(t, err)
			assert.Len(t, w, testWindowLength)
			testutil.AssertSymmetric(t, w, windowTolerance)
			testutil.AssertCenterIsMax(t, w)
		})
	}
}

func TestMakeWindow_Errors(t *testing.T) {
	_, err := MakeWindow("triangle-ish", 8, 0)
	require.Error(t, err)

	_, err = MakeWindow(WindowHamming, 0, 0)
	require.Error(t, err)
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("", WindowHamming)
	require.NoError(t, err)
	assert.Equal(t, WindowHamming, w)

	w, err = ParseWindow("blackman", WindowHamming)
	require.NoError(t, err)
	assert.Equal(t, WindowBlackman, w)

	_, err = ParseWindow("Blackman", WindowHamming)
	assert.Error(t, err, "window names are case sensitive")
}
