package colorutil_test

import (
	"image/color"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sharechart/pkg/colorutil"
)

var rgbPattern = regexp.MustCompile(`^rgb\((\d{1,3}),(\d{1,3}),(\d{1,3})\)$`)

func TestShade_Darken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rgb(0,149,179)", colorutil.Shade("#05E1FF", -30))
}

func TestShade_Lighten(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rgb(51,51,51)", colorutil.Shade("#000000", 20))
	assert.Equal(t, "rgb(255,255,255)", colorutil.Shade("#F0F0F0", 20))
}

func TestShade_NegativeHalfRoundsUp(t *testing.T) {
	t.Parallel()

	// 2.55 * -10 = -25.5 rounds to -25, not -26.
	assert.Equal(t, "rgb(103,103,103)", colorutil.Shade("#808080", -10))
}

func TestShade_ShortHex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rgb(170,187,204)", colorutil.Shade("#abc", 0))
}

func TestShade_FunctionalPassThrough(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rgba(10,20,30,0.5)", colorutil.Shade("rgba(10,20,30,0.5)", -30))
	assert.Equal(t, "rgb(1,2,3)", colorutil.Shade("rgb(1,2,3)", 50))
}

func TestShade_MalformedIsDeterministic(t *testing.T) {
	t.Parallel()

	first := colorutil.Shade("#zzzzzz", -30)
	second := colorutil.Shade("#zzzzzz", -30)

	assert.Equal(t, first, second)
	assert.Regexp(t, rgbPattern, first)
}

func TestShade_ChannelsStayInRange(t *testing.T) {
	t.Parallel()

	inputs := []string{"#000", "#fff", "#05E1FF", "#FF67B5", "#7AF27A", "#123456"}

	for _, in := range inputs {
		for percent := -100; percent <= 100; percent += 5 {
			out := colorutil.Shade(in, float64(percent))

			match := rgbPattern.FindStringSubmatch(out)
			require.NotNil(t, match, "shade(%s, %d) = %q", in, percent, out)

			for _, ch := range match[1:] {
				v, err := strconv.Atoi(ch)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, v, 0)
				assert.LessOrEqual(t, v, 255)
			}
		}
	}
}

func TestShade_ZeroPercentMatchesParse(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"#05E1FF", "#abc", "#FFDB7D", "#000000"} {
		r, g, b, ok := colorutil.ParseHex(in)
		require.True(t, ok)

		assert.Equal(t, colorutil.FormatRGB(r, g, b), colorutil.Shade(in, 0))
	}
}

func TestParseHex_Invalid(t *testing.T) {
	t.Parallel()

	_, _, _, ok := colorutil.ParseHex("#12345")
	assert.False(t, ok)

	_, _, _, ok = colorutil.ParseHex("#gggggg")
	assert.False(t, ok)
}

func TestToRGBA(t *testing.T) {
	t.Parallel()

	assert.Equal(t, color.RGBA{R: 0x05, G: 0xE1, B: 0xFF, A: 255}, colorutil.ToRGBA("#05E1FF"))
	assert.Equal(t, color.RGBA{R: 0, G: 149, B: 179, A: 255}, colorutil.ToRGBA("rgb(0,149,179)"))
	assert.Equal(t, color.RGBA{A: 255}, colorutil.ToRGBA("rgb(oops)"))
}
