// Package colorutil provides small color helpers shared by the chart engines:
// percentage shading of hex colors and conversion to image/color values.
package colorutil

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

const (
	hexPrefix       = "#"
	rgbPrefix       = "rgb"
	shortHexLen     = 3
	fullHexLen      = 6
	channelMax      = 255
	percentToAmount = 2.55
	redShift        = 16
	greenShift      = 8
	channelMask     = 0xFF
	hexBase         = 16
	rgbChannelCount = 3
)

// Shade darkens (negative percent) or lightens (positive percent) a hex color
// by adding round(2.55*percent) to every channel and clamping to [0,255].
//
// Colors already in functional notation (rgb(...), rgba(...)) are returned
// unchanged. Malformed hex input is parsed as black, so the result is
// deterministic but meaningless.
func Shade(c string, percent float64) string {
	if IsFunctional(c) {
		return c
	}

	num := parseHexNumber(c)

	// Half-way values round up, matching browser Math.round.
	amt := int(math.Floor(percentToAmount*percent + 0.5))

	r := clampChannel(int(num>>redShift) + amt)
	g := clampChannel(int((num>>greenShift)&channelMask) + amt)
	b := clampChannel(int(num&channelMask) + amt)

	return FormatRGB(r, g, b)
}

// IsFunctional reports whether c uses rgb()/rgba() notation.
func IsFunctional(c string) bool {
	return strings.HasPrefix(strings.TrimSpace(c), rgbPrefix)
}

// FormatRGB renders channels as "rgb(R,G,B)".
func FormatRGB(r, g, b uint8) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}

// ParseHex parses "#RGB" or "#RRGGBB" (leading # optional).
func ParseHex(c string) (r, g, b uint8, ok bool) {
	digits, ok := expandHex(c)
	if !ok {
		return 0, 0, 0, false
	}

	num, err := strconv.ParseUint(digits, hexBase, 32)
	if err != nil {
		return 0, 0, 0, false
	}

	return uint8(num >> redShift), uint8((num >> greenShift) & channelMask), uint8(num & channelMask), true
}

// ToRGBA converts a hex or rgb()/rgba() color into an opaque color.RGBA.
// Unparseable input yields opaque black.
func ToRGBA(c string) color.RGBA {
	if IsFunctional(c) {
		r, g, b, ok := parseFunctional(c)
		if ok {
			return color.RGBA{R: r, G: g, B: b, A: channelMax}
		}

		return color.RGBA{A: channelMax}
	}

	r, g, b, _ := ParseHex(c)

	return color.RGBA{R: r, G: g, B: b, A: channelMax}
}

func parseHexNumber(c string) uint64 {
	digits, ok := expandHex(c)
	if !ok {
		digits = strings.TrimPrefix(c, hexPrefix)
	}

	num, err := strconv.ParseUint(digits, hexBase, 32)
	if err != nil {
		return 0
	}

	return num
}

func expandHex(c string) (string, bool) {
	digits := strings.TrimPrefix(strings.TrimSpace(c), hexPrefix)

	switch len(digits) {
	case shortHexLen:
		var sb strings.Builder

		for _, ch := range digits {
			sb.WriteRune(ch)
			sb.WriteRune(ch)
		}

		return sb.String(), true
	case fullHexLen:
		return digits, true
	default:
		return digits, false
	}
}

func parseFunctional(c string) (r, g, b uint8, ok bool) {
	open := strings.IndexByte(c, '(')
	closing := strings.LastIndexByte(c, ')')

	if open < 0 || closing <= open {
		return 0, 0, 0, false
	}

	parts := strings.Split(c[open+1:closing], ",")
	if len(parts) < rgbChannelCount {
		return 0, 0, 0, false
	}

	var channels [rgbChannelCount]uint8

	for i := range rgbChannelCount {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return 0, 0, 0, false
		}

		channels[i] = clampChannel(int(math.Round(v)))
	}

	return channels[0], channels[1], channels[2], true
}

func clampChannel(v int) uint8 {
	return uint8(max(0, min(channelMax, v)))
}
