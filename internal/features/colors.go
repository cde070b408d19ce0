package features

import (
	"fmt"
	"math"

	"go.lsp.dev/protocol"

	"github.com/kaptinlin/jsonls/internal/cst"
	"github.com/kaptinlin/jsonls/internal/document"
)

// DocumentColors scans every string value in the document for a hex color
// literal (#rgb, #rgba, #rrggbb, #rrggbbaa) and reports it as a color
// range, the same way colors.rs does. It never recurses into a string's own
// children beyond decoding its content.
func DocumentColors(doc *document.Document) []protocol.ColorInformation {
	root := cst.RootValue(doc.Tree())
	if root == nil {
		return nil
	}
	var out []protocol.ColorInformation
	var walk func(n *cst.Node)
	walk = func(n *cst.Node) {
		switch cst.Kind(n) {
		case cst.KindString:
			if s, ok := cst.StringContent(n, doc.Text); ok {
				if color, ok := parseHexColor(s); ok {
					out = append(out, protocol.ColorInformation{
						Range: nodeRange(n, doc.Text, doc.LineIndex()),
						Color: color,
					})
				}
			}
		case cst.KindObject:
			for _, pair := range cst.ObjectPairs(n) {
				walk(cst.PairValue(pair))
			}
		case cst.KindArray:
			for _, item := range cst.ArrayItems(n) {
				walk(item)
			}
		}
	}
	walk(root)
	return out
}

// ColorPresentations builds the alternative textual representations VS
// Code's color picker offers for a resolved color: hex, rgb(a), hsl(a).
func ColorPresentations(c protocol.Color) []protocol.ColorPresentation {
	hasAlpha := math.Abs(c.Alpha-1.0) > 1e-6

	hex := fmt.Sprintf("#%02x%02x%02x", to255(c.Red), to255(c.Green), to255(c.Blue))
	if hasAlpha {
		hex += fmt.Sprintf("%02x", to255(c.Alpha))
	}

	var rgb string
	if hasAlpha {
		rgb = fmt.Sprintf("rgba(%d, %d, %d, %.2f)", to255(c.Red), to255(c.Green), to255(c.Blue), c.Alpha)
	} else {
		rgb = fmt.Sprintf("rgb(%d, %d, %d)", to255(c.Red), to255(c.Green), to255(c.Blue))
	}

	h, s, l := rgbToHSL(c.Red, c.Green, c.Blue)
	var hsl string
	if hasAlpha {
		hsl = fmt.Sprintf("hsla(%d, %d%%, %d%%, %.2f)", h, s, l, c.Alpha)
	} else {
		hsl = fmt.Sprintf("hsl(%d, %d%%, %d%%)", h, s, l)
	}

	return []protocol.ColorPresentation{
		{Label: hex, TextEdit: nil},
		{Label: rgb, TextEdit: nil},
		{Label: hsl, TextEdit: nil},
	}
}

func to255(v float64) int {
	return int(math.Round(v * 255))
}

func parseHexColor(s string) (protocol.Color, bool) {
	if len(s) == 0 || s[0] != '#' {
		return protocol.Color{}, false
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		r, ok1 := hexDigit(hex[0])
		g, ok2 := hexDigit(hex[1])
		b, ok3 := hexDigit(hex[2])
		if !(ok1 && ok2 && ok3) {
			return protocol.Color{}, false
		}
		return protocol.Color{Red: float64(r*16+r) / 255, Green: float64(g*16+g) / 255, Blue: float64(b*16+b) / 255, Alpha: 1}, true
	case 4:
		r, ok1 := hexDigit(hex[0])
		g, ok2 := hexDigit(hex[1])
		b, ok3 := hexDigit(hex[2])
		a, ok4 := hexDigit(hex[3])
		if !(ok1 && ok2 && ok3 && ok4) {
			return protocol.Color{}, false
		}
		return protocol.Color{
			Red: float64(r*16+r) / 255, Green: float64(g*16+g) / 255, Blue: float64(b*16+b) / 255, Alpha: float64(a*16+a) / 255,
		}, true
	case 6:
		r, ok1 := hexByte(hex[0:2])
		g, ok2 := hexByte(hex[2:4])
		b, ok3 := hexByte(hex[4:6])
		if !(ok1 && ok2 && ok3) {
			return protocol.Color{}, false
		}
		return protocol.Color{Red: float64(r) / 255, Green: float64(g) / 255, Blue: float64(b) / 255, Alpha: 1}, true
	case 8:
		r, ok1 := hexByte(hex[0:2])
		g, ok2 := hexByte(hex[2:4])
		b, ok3 := hexByte(hex[4:6])
		a, ok4 := hexByte(hex[6:8])
		if !(ok1 && ok2 && ok3 && ok4) {
			return protocol.Color{}, false
		}
		return protocol.Color{Red: float64(r) / 255, Green: float64(g) / 255, Blue: float64(b) / 255, Alpha: float64(a) / 255}, true
	default:
		return protocol.Color{}, false
	}
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func hexByte(s string) (int, bool) {
	hi, ok1 := hexDigit(s[0])
	lo, ok2 := hexDigit(s[1])
	if !ok1 || !ok2 {
		return 0, false
	}
	return hi*16 + lo, true
}

func rgbToHSL(r, g, b float64) (h, s, l int) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	lf := (max + min) / 2
	var hf, sf float64
	if max == min {
		hf, sf = 0, 0
	} else {
		d := max - min
		if lf > 0.5 {
			sf = d / (2 - max - min)
		} else {
			sf = d / (max + min)
		}
		switch max {
		case r:
			hf = (g - b) / d
			if g < b {
				hf += 6
			}
		case g:
			hf = (b-r)/d + 2
		case b:
			hf = (r-g)/d + 4
		}
		hf /= 6
	}
	return int(math.Round(hf * 360)), int(math.Round(sf * 100)), int(math.Round(lf * 100))
}
