package img2uni

// DitherAtkinson quantizes a grayscale buffer (row-major, w x h, values in
// [0, 1]) to a binary 0/1 pattern using Atkinson error diffusion. Pixels
// are visited in raster order; 1/8 of each pixel's quantization error goes
// to six not-yet-visited neighbors (right, right+2, below-left, below,
// below-right, two-below). Only 6/8 of the error propagates, so the image
// darkens slightly while contrast increases; that bias is an accepted
// property of the algorithm, not a defect.
//
// scale > 1 diffuses over scale x scale blocks: the buffer is averaged
// down, dithered at block resolution, and the binary pattern replicated
// back, which keeps dithered features at roughly character size. The
// result is bit-for-bit deterministic for identical input and scale.
func DitherAtkinson(pix []float32, w, h, scale int) []float32 {
	if scale < 1 {
		scale = 1
	}

	workW, workH := w, h
	if scale > 1 {
		workW = (w + scale - 1) / scale
		workH = (h + scale - 1) / scale
	}

	// Working buffer accumulates diffused error on top of pixel values.
	errors := make([]float32, workW*workH)
	if scale == 1 {
		copy(errors, pix)
	} else {
		for by := 0; by < workH; by++ {
			for bx := 0; bx < workW; bx++ {
				var sum float32
				var count int
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						x, y := bx*scale+dx, by*scale+dy
						if x < w && y < h {
							sum += pix[y*w+x]
							count++
						}
					}
				}
				errors[by*workW+bx] = sum / float32(count)
			}
		}
	}

	dithered := make([]float32, workW*workH)
	for y := 0; y < workH; y++ {
		for x := 0; x < workW; x++ {
			idx := y*workW + x

			old := errors[idx]
			if old < 0 {
				old = 0
			} else if old > 1 {
				old = 1
			}

			var quantized float32
			if old > 0.5 {
				quantized = 1
			}
			dithered[idx] = quantized

			e := (old - quantized) / 8

			if x+1 < workW {
				errors[idx+1] += e
			}
			if x+2 < workW {
				errors[idx+2] += e
			}
			if y+1 < workH {
				row := idx + workW
				if x > 0 {
					errors[row-1] += e
				}
				errors[row] += e
				if x+1 < workW {
					errors[row+1] += e
				}
			}
			if y+2 < workH {
				errors[idx+2*workW] += e
			}
		}
	}

	if scale == 1 {
		return dithered
	}

	// Replicate the block pattern back to full resolution.
	out := make([]float32, w*h)
	for y := 0; y < h; y++ {
		by := min(y/scale, workH-1)
		for x := 0; x < w; x++ {
			bx := min(x/scale, workW-1)
			out[y*w+x] = dithered[by*workW+bx]
		}
	}
	return out
}
