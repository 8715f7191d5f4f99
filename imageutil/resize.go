package imageutil

import "math"

// ResizeGray resamples a grayscale image to the specified dimensions using
// bilinear interpolation. Each destination sample maps back to source
// coordinates via
//
//	src = (dst + 0.5) * (srcDim / dstDim) - 0.5
//
// and coordinates are clamped to [0, srcDim-1] at the borders; there is no
// wraparound or extrapolation. When the destination dimensions equal the
// source dimensions the mapping is the identity and the output is an exact
// pixel copy. Downstream grid layout depends on this exact mapping, so it
// must not be swapped for a different kernel.
func ResizeGray(src *GrayImage, width, height int) *GrayImage {
	srcW, srcH := src.Width(), src.Height()
	if width <= 0 || height <= 0 || srcW == 0 || srcH == 0 {
		return NewGrayImage(max(width, 0), max(height, 0))
	}
	if width == srcW && height == srcH {
		return src.Clone()
	}

	dst := NewGrayImage(width, height)
	scaleX := float64(srcW) / float64(width)
	scaleY := float64(srcH) / float64(height)

	for dy := 0; dy < height; dy++ {
		sy := (float64(dy)+0.5)*scaleY - 0.5
		y0, fy := splitCoord(sy, srcH)
		y1 := min(y0+1, srcH-1)

		for dx := 0; dx < width; dx++ {
			sx := (float64(dx)+0.5)*scaleX - 0.5
			x0, fx := splitCoord(sx, srcW)
			x1 := min(x0+1, srcW-1)

			top := lerp(float64(src.GetGray(x0, y0)), float64(src.GetGray(x1, y0)), fx)
			bottom := lerp(float64(src.GetGray(x0, y1)), float64(src.GetGray(x1, y1)), fx)
			v := lerp(top, bottom, fy)

			dst.SetGrayValue(dx, dy, uint8(math.Round(clampFloat(v, 0, 255))))
		}
	}

	return dst
}

// splitCoord clamps a source coordinate to [0, dim-1] and splits it into
// an integer base index and a fractional interpolation weight.
func splitCoord(s float64, dim int) (int, float64) {
	if s <= 0 {
		return 0, 0
	}
	if s >= float64(dim-1) {
		return dim - 1, 0
	}
	i := math.Floor(s)
	return int(i), s - i
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
