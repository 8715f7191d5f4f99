package img2uni

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/wbrown/img2uni/imageutil"
)

// Converter encapsulates all state for one image-to-Unicode pipeline: the
// loaded codebook, its charset views, the embedding provider, and the
// conversion configuration. Converters own their state explicitly, so
// multiple independent converters can run in the same process.
//
// Configuration fields may be changed between calls; each conversion call
// reads a snapshot at entry. The codebook and its views are immutable
// after construction and safe to share across concurrent conversions; the
// embedder is the serialization point (one Embed call in flight at a
// time, cells in row-major order).
type Converter struct {
	// TargetWidth is the output width in characters.
	TargetWidth int

	// TargetHeight is the output height in characters; 0 derives it from
	// the source aspect ratio (see GridSize).
	TargetHeight int

	// Dither enables Atkinson error-diffusion preprocessing per cell.
	Dither bool

	// Charset selects which codebook sub-view the matcher uses.
	Charset CharsetMode

	// Invert flips luminance before dithering (or before embedding when
	// dithering is off).
	Invert bool

	// EdgeWeight blends shape similarity against luminosity closeness;
	// 1.0 is pure embedding matching.
	EdgeWeight float32

	codebook *Codebook
	embedder Embedder
	views    map[CharsetMode]*View
}

// ConverterOption is a functional option for configuring a Converter.
type ConverterOption func(*Converter)

// NewConverter creates a Converter over a loaded codebook and an embedding
// provider. The provider's output dimension must match the codebook's;
// a mismatch is reported here, never mid-conversion.
// Defaults: TargetWidth=80, derived height, no dither, default charset,
// EdgeWeight=1.0.
func NewConverter(cb *Codebook, e Embedder, opts ...ConverterOption) (*Converter, error) {
	if e.Dim() != cb.Dim() {
		return nil, &AssetError{Reason: fmt.Sprintf(
			"embedding provider dimension %d does not match codebook dimension %d",
			e.Dim(), cb.Dim())}
	}

	c := &Converter{
		TargetWidth: 80,
		Charset:     CharsetDefault,
		EdgeWeight:  1.0,
		codebook:    cb,
		embedder:    e,
		views: map[CharsetMode]*View{
			CharsetASCII:   cb.Filter(CharsetASCII),
			CharsetDefault: cb.Filter(CharsetDefault),
			CharsetAll:     cb.Filter(CharsetAll),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// WithTargetWidth sets the output width in characters.
func WithTargetWidth(width int) ConverterOption {
	return func(c *Converter) {
		c.TargetWidth = width
	}
}

// WithTargetHeight sets an explicit output height in characters.
func WithTargetHeight(height int) ConverterOption {
	return func(c *Converter) {
		c.TargetHeight = height
	}
}

// WithDither enables or disables Atkinson dithering.
func WithDither(enabled bool) ConverterOption {
	return func(c *Converter) {
		c.Dither = enabled
	}
}

// WithCharset selects the charset mode.
func WithCharset(mode CharsetMode) ConverterOption {
	return func(c *Converter) {
		c.Charset = mode
	}
}

// WithInvert enables or disables luminance inversion.
func WithInvert(enabled bool) ConverterOption {
	return func(c *Converter) {
		c.Invert = enabled
	}
}

// WithEdgeWeight sets the shape-vs-luminosity blend weight.
func WithEdgeWeight(w float32) ConverterOption {
	return func(c *Converter) {
		c.EdgeWeight = w
	}
}

// Convert decodes raw image bytes and converts them to a character grid.
// Each returned row is a string of exactly TargetWidth characters.
func (c *Converter) Convert(ctx context.Context, data []byte) ([]string, error) {
	img, err := imageutil.Decode(data)
	if err != nil {
		return nil, &DecodeError{cause: err}
	}
	return c.ConvertImage(ctx, img)
}

// ConvertImage converts a decoded image to a character grid. The
// conversion is all or nothing: any embedding failure terminates the call
// with an *EmbedError and no partial grid.
func (c *Converter) ConvertImage(ctx context.Context, img image.Image) ([]string, error) {
	// Snapshot the configuration for this call.
	width, height := c.TargetWidth, c.TargetHeight
	dither, invert := c.Dither, c.Invert
	edgeWeight := c.EdgeWeight
	view := c.views[c.Charset]
	if view == nil {
		view = c.views[CharsetDefault]
	}

	gray := imageutil.ToGray(img)
	if invert {
		gray.Invert()
	}

	cols, rows, err := GridSize(gray.Width(), gray.Height(), width, height)
	if err != nil {
		return nil, err
	}

	grid := NewChunkGrid(gray, cols, rows)

	out := make([]string, 0, rows)
	var sb strings.Builder
	for row := 0; row < rows; row++ {
		sb.Reset()
		for col := 0; col < cols; col++ {
			// Cancellation takes effect only at cell boundaries.
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			cell := grid.Cell(row, col)
			pix := cell.Pix
			if dither {
				pix = DitherAtkinson(pix, CellWidth, CellHeight, 1)
			}

			emb, err := c.embedder.Embed(ctx, NewCellTensor(pix))
			if err != nil {
				return nil, &EmbedError{Row: row, Col: col, cause: err}
			}
			if len(emb) != c.codebook.Dim() {
				return nil, &EmbedError{Row: row, Col: col, cause: fmt.Errorf(
					"provider returned vector of dimension %d, want %d",
					len(emb), c.codebook.Dim())}
			}

			ch := ' '
			if m, ok := view.BestMatchBlended(emb, CellLuminosity(pix), edgeWeight); ok {
				ch = m.Char
			}
			sb.WriteRune(ch)
		}
		out = append(out, sb.String())
	}

	return out, nil
}
