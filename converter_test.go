package img2uni

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// luminosityEmbedder maps a cell to a 4-dim vector driven by its mean
// luminosity, so matches are fully predictable: dark cells align with
// darkCodebook's space entry, bright cells with the full block.
func luminosityEmbedder() EmbedderFunc {
	return EmbedderFunc{
		Dimension: 4,
		Fn: func(ctx context.Context, tensor *Tensor) ([]float32, error) {
			var sum float32
			for _, v := range tensor.Data {
				sum += v
			}
			mean := sum / float32(len(tensor.Data))
			return []float32{mean, 1 - mean, 0.25, 0.25}, nil
		},
	}
}

func darkCodebook(t *testing.T) *Codebook {
	t.Helper()
	cb, err := NewCodebook([]CodebookEntry{
		{Char: ' ', Embedding: []float32{0, 1, 0.25, 0.25}, Category: CategoryASCII, Luminosity: 0},
		{Char: '█', Embedding: []float32{1, 0, 0.25, 0.25}, Category: CategoryMonochrome, Luminosity: 1},
	})
	require.NoError(t, err)
	return cb
}

func uniformGray(w, h int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestConvertImageUniform(t *testing.T) {
	conv, err := NewConverter(darkCodebook(t), luminosityEmbedder(),
		WithTargetWidth(20))
	require.NoError(t, err)

	// 160x160 at width 20 derives 20*160/160/2 = 10 rows.
	rows, err := conv.ConvertImage(context.Background(), uniformGray(160, 160, 0))
	require.NoError(t, err)
	require.Len(t, rows, 10)
	for _, row := range rows {
		assert.Equal(t, strings.Repeat(" ", 20), row)
	}

	rows, err = conv.ConvertImage(context.Background(), uniformGray(160, 160, 255))
	require.NoError(t, err)
	require.Len(t, rows, 10)
	for _, row := range rows {
		assert.Equal(t, strings.Repeat("█", 20), row)
	}
}

func TestConvertImageExplicitHeight(t *testing.T) {
	conv, err := NewConverter(darkCodebook(t), luminosityEmbedder(),
		WithTargetWidth(8), WithTargetHeight(3))
	require.NoError(t, err)

	rows, err := conv.ConvertImage(context.Background(), uniformGray(100, 100, 0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Len(t, []rune(row), 8)
	}
}

func TestConvertImageInvert(t *testing.T) {
	conv, err := NewConverter(darkCodebook(t), luminosityEmbedder(),
		WithTargetWidth(4), WithInvert(true))
	require.NoError(t, err)

	// A black source inverts to white before embedding.
	rows, err := conv.ConvertImage(context.Background(), uniformGray(64, 64, 0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "████", row)
	}
}

func TestConvertImageDither(t *testing.T) {
	conv, err := NewConverter(darkCodebook(t), luminosityEmbedder(),
		WithTargetWidth(4), WithDither(true))
	require.NoError(t, err)

	// Dithering quantizes cells to 0/1, so uniform extremes still map to
	// the extreme characters.
	rows, err := conv.ConvertImage(context.Background(), uniformGray(64, 32, 255))
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, "████", row)
	}
}

func TestConvertDecodesPNG(t *testing.T) {
	conv, err := NewConverter(darkCodebook(t), luminosityEmbedder(),
		WithTargetWidth(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, uniformGray(16, 16, 0)))

	rows, err := conv.Convert(context.Background(), buf.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "  ", rows[0])
}

func TestConvertRejectsGarbage(t *testing.T) {
	conv, err := NewConverter(darkCodebook(t), luminosityEmbedder())
	require.NoError(t, err)

	_, err = conv.Convert(context.Background(), []byte("not an image"))
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestConvertImageConfigError(t *testing.T) {
	conv, err := NewConverter(darkCodebook(t), luminosityEmbedder(),
		WithTargetWidth(0))
	require.NoError(t, err)

	_, err = conv.ConvertImage(context.Background(), uniformGray(16, 16, 0))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestConvertImageEmbedFailureIsAllOrNothing(t *testing.T) {
	boom := errors.New("backend down")
	calls := 0
	failing := EmbedderFunc{
		Dimension: 4,
		Fn: func(ctx context.Context, tensor *Tensor) ([]float32, error) {
			calls++
			if calls == 3 {
				return nil, boom
			}
			return []float32{0, 1, 0.25, 0.25}, nil
		},
	}

	conv, err := NewConverter(darkCodebook(t), failing, WithTargetWidth(4))
	require.NoError(t, err)

	rows, err := conv.ConvertImage(context.Background(), uniformGray(64, 32, 0))
	assert.Nil(t, rows, "no partial grid on failure")

	var embErr *EmbedError
	require.ErrorAs(t, err, &embErr)
	assert.Equal(t, 0, embErr.Row)
	assert.Equal(t, 2, embErr.Col)
	assert.ErrorIs(t, err, boom)
}

func TestConvertImageWrongDimVector(t *testing.T) {
	lying := EmbedderFunc{
		Dimension: 4, // claims 4, returns 3
		Fn: func(ctx context.Context, tensor *Tensor) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
	}

	conv, err := NewConverter(darkCodebook(t), lying, WithTargetWidth(2))
	require.NoError(t, err)

	_, err = conv.ConvertImage(context.Background(), uniformGray(16, 16, 0))
	var embErr *EmbedError
	require.ErrorAs(t, err, &embErr)
}

func TestNewConverterDimMismatch(t *testing.T) {
	wrong := EmbedderFunc{
		Dimension: 7,
		Fn: func(ctx context.Context, tensor *Tensor) ([]float32, error) {
			return make([]float32, 7), nil
		},
	}

	_, err := NewConverter(darkCodebook(t), wrong)
	var assetErr *AssetError
	require.ErrorAs(t, err, &assetErr)
}

func TestConvertImageCancellation(t *testing.T) {
	conv, err := NewConverter(darkCodebook(t), luminosityEmbedder(),
		WithTargetWidth(20))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = conv.ConvertImage(ctx, uniformGray(160, 160, 0))
	require.ErrorIs(t, err, context.Canceled)
}

func TestConvertImageUnknownCharsetFallsBack(t *testing.T) {
	conv, err := NewConverter(darkCodebook(t), luminosityEmbedder(),
		WithTargetWidth(2))
	require.NoError(t, err)
	conv.Charset = CharsetMode(99)

	rows, err := conv.ConvertImage(context.Background(), uniformGray(16, 16, 0))
	require.NoError(t, err)
	assert.Equal(t, "  ", rows[0])
}
