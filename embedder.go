package img2uni

import "context"

const (
	// CellWidth and CellHeight define the pixel size of one character
	// cell. A terminal character cell has a 1:2 aspect ratio.
	CellWidth  = 8
	CellHeight = 16

	// cellAspect is the height:width ratio used when deriving the output
	// row count from the column count alone.
	cellAspect = float64(CellHeight) / float64(CellWidth)
)

// Tensor is the embedding provider's input: a [1, C, H, W] float32 tensor
// with values in [0, 1]. The batch dimension is always 1.
type Tensor struct {
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// NewCellTensor wraps a single-channel CellWidth x CellHeight pixel buffer
// as an inference input tensor. The buffer is row-major and is not copied.
func NewCellTensor(pix []float32) *Tensor {
	return &Tensor{
		Channels: 1,
		Height:   CellHeight,
		Width:    CellWidth,
		Data:     pix,
	}
}

// Embedder maps a pixel tensor to a fixed-dimension float vector. The
// engine never inspects how the vector is computed; it depends solely on
// the tensor shape contract and on Dim matching the codebook's dimension.
//
// Implementations are not assumed to be safe for concurrent use; the
// engine issues one Embed call at a time. The returned vector need not be
// pre-normalized, the matcher normalizes defensively.
type Embedder interface {
	// Dim returns the length of the vectors Embed produces.
	Dim() int

	// Embed runs inference on a single cell tensor and returns its
	// embedding vector of length Dim.
	Embed(ctx context.Context, t *Tensor) ([]float32, error)
}

// EmbedderFunc adapts an in-process function to the Embedder interface.
// Native inference sessions and test doubles bind through it.
type EmbedderFunc struct {
	Dimension int
	Fn        func(ctx context.Context, t *Tensor) ([]float32, error)
}

// Dim returns the configured output dimension.
func (f EmbedderFunc) Dim() int { return f.Dimension }

// Embed invokes the wrapped function.
func (f EmbedderFunc) Embed(ctx context.Context, t *Tensor) ([]float32, error) {
	return f.Fn(ctx, t)
}
