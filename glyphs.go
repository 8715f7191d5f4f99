package img2uni

import (
	"fmt"
	"image"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// glyphFontSize is the point size characters are rendered at inside an
// 8x16 cell. Matches the size the encoder was trained on.
const glyphFontSize = 14

// emojiRanges are codepoint ranges excluded from candidate pools; emoji
// render in color and cannot be matched monochromatically.
var emojiRanges = [][2]rune{
	{0x1F300, 0x1F9FF},
	{0x2600, 0x26FF},
	{0x2700, 0x27BF},
	{0xFE00, 0xFE0F},
	{0x1F000, 0x1FFFF},
}

func isEmoji(r rune) bool {
	for _, rg := range emojiRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// LoadFont loads a TrueType font from file.
func LoadFont(path string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ttf, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}

	return ttf, nil
}

// FontRunes enumerates the characters a font can render that are eligible
// as codebook candidates: Basic Multilingual Plane, printable, non-emoji.
// The result is in ascending codepoint order, which is the curation
// priority order.
func FontRunes(ttf *truetype.Font) []rune {
	var runes []rune
	for r := rune(0x20); r <= 0xFFFF; r++ {
		if isEmoji(r) {
			continue
		}
		if ttf.Index(r) == 0 {
			continue
		}
		runes = append(runes, r)
	}
	return runes
}

// RenderGlyphCell renders a single character into a CellWidth x CellHeight
// float cell with values in [0, 1]. The glyph sits on a baseline at 75% of
// the cell height and is horizontally centered, the same placement the
// encoder's training data used. Anti-aliased coverage is kept as grayscale
// rather than thresholded; the embedding input is continuous.
func RenderGlyphCell(ttf *truetype.Font, r rune) []float32 {
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    glyphFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	img := image.NewAlpha(image.Rect(0, 0, CellWidth, CellHeight))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(glyphFontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	baselineY := CellHeight * 3 / 4

	x := 0
	if adv, ok := face.GlyphAdvance(r); ok {
		advPx := int(adv >> 6)
		if advPx < CellWidth {
			x = (CellWidth - advPx) / 2
		}
	}

	// Drawing failures (missing glyph) leave an empty cell; the curator
	// discards zero-norm candidates downstream.
	_, _ = ctx.DrawString(string(r), freetype.Pt(x, baselineY))

	pix := make([]float32, CellWidth*CellHeight)
	for y := 0; y < CellHeight; y++ {
		for xx := 0; xx < CellWidth; xx++ {
			pix[y*CellWidth+xx] = float32(img.AlphaAt(xx, y).A) / 255
		}
	}
	return pix
}

// CellLuminosity returns the mean pixel value of a cell in [0, 1].
func CellLuminosity(pix []float32) float32 {
	if len(pix) == 0 {
		return 0
	}
	var sum float32
	for _, v := range pix {
		sum += v
	}
	return sum / float32(len(pix))
}
