package dom

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	// Register a broad set of image decoders so canvas data URIs in any
	// common format can be decoded.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
)

// parseInlineStyle splits a style attribute into a property map. Unknown
// properties are kept verbatim so serialization round-trips.
func parseInlineStyle(s string) map[string]string {
	m := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop != "" && val != "" {
			m[prop] = val
		}
	}
	return m
}

// stylePx parses a pixel length ("200px", "200"). Non-pixel units and
// keywords yield 0 (treated as auto).
func stylePx(v string) float64 {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// namedColors covers the handful of keywords dashboards actually use.
var namedColors = map[string]color.NRGBA{
	"white":       {0xff, 0xff, 0xff, 0xff},
	"black":       {0x00, 0x00, 0x00, 0xff},
	"red":         {0xff, 0x00, 0x00, 0xff},
	"transparent": {0x00, 0x00, 0x00, 0x00},
}

// parseColor parses #rgb, #rrggbb and a few named colors. The second return
// is false when the value is absent or unrecognized.
func parseColor(v string) (color.NRGBA, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return color.NRGBA{}, false
	}
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if !strings.HasPrefix(v, "#") {
		return color.NRGBA{}, false
	}
	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{
		R: uint8(n >> 16),
		G: uint8(n >> 8),
		B: uint8(n),
		A: 0xff,
	}, true
}

// BackgroundColor returns the element's inline background color, if any.
func (e *Element) BackgroundColor() (color.NRGBA, bool) {
	if c, ok := parseColor(e.Style("background-color")); ok {
		return c, ok
	}
	return parseColor(e.Style("background"))
}

// decodeDataURI decodes a base64 image data URI into pixels.
func decodeDataURI(uri string) (image.Image, error) {
	_, data, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return nil, fmt.Errorf("dom: not a base64 data URI")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("dom: decoding data URI: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("dom: decoding data URI image: %w", err)
	}
	return img, nil
}

// encodeDataURI serializes pixels as a PNG data URI.
func encodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("dom: encoding canvas content: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
