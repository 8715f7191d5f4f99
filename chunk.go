package img2uni

import (
	"math"

	"github.com/wbrown/img2uni/imageutil"
)

// Cell is one CellWidth x CellHeight window of pixel data together with
// its position in the output grid. Pix is row-major with values in [0, 1].
type Cell struct {
	Row int
	Col int
	Pix []float32
}

// GridSize validates and derives the output grid dimensions. cols must be
// positive. When rows is zero it is derived from the source aspect ratio
// and the 1:2 character-cell aspect:
//
//	rows = round(cols * srcH / srcW / aspect)    aspect = CellHeight/CellWidth = 2.0
//
// clamped to a minimum of 1. Downstream layout depends on this exact
// formula.
func GridSize(srcW, srcH, cols, rows int) (int, int, error) {
	if cols <= 0 {
		return 0, 0, &ConfigError{Field: "target_width", Value: cols}
	}
	if rows < 0 {
		return 0, 0, &ConfigError{Field: "target_height", Value: rows}
	}
	if rows == 0 {
		if srcW <= 0 || srcH <= 0 {
			return 0, 0, &ConfigError{Field: "source_width", Value: srcW}
		}
		rows = int(math.Round(float64(cols) * float64(srcH) / float64(srcW) / cellAspect))
		if rows < 1 {
			rows = 1
		}
	}
	return cols, rows, nil
}

// ChunkGrid slices a source image into a cols x rows grid of cells. The
// source is resampled once to cols*CellWidth x rows*CellHeight with the
// bilinear kernel in imageutil, so each cell is an exact pixel slice of
// the resampled frame. When the source already has those dimensions the
// resampling degenerates to an exact copy.
type ChunkGrid struct {
	cols  int
	rows  int
	frame *imageutil.GrayImage
}

// NewChunkGrid resamples src into a cell grid. cols and rows must already
// be validated via GridSize.
func NewChunkGrid(src *imageutil.GrayImage, cols, rows int) *ChunkGrid {
	return &ChunkGrid{
		cols:  cols,
		rows:  rows,
		frame: imageutil.ResizeGray(src, cols*CellWidth, rows*CellHeight),
	}
}

// Cols returns the number of cell columns.
func (g *ChunkGrid) Cols() int { return g.cols }

// Rows returns the number of cell rows.
func (g *ChunkGrid) Rows() int { return g.rows }

// Cell extracts the cell at (row, col) as a fresh float buffer scaled to
// [0, 1].
func (g *ChunkGrid) Cell(row, col int) Cell {
	pix := make([]float32, CellWidth*CellHeight)
	x0, y0 := col*CellWidth, row*CellHeight
	for y := 0; y < CellHeight; y++ {
		for x := 0; x < CellWidth; x++ {
			pix[y*CellWidth+x] = float32(g.frame.GetGray(x0+x, y0+y)) / 255
		}
	}
	return Cell{Row: row, Col: col, Pix: pix}
}
