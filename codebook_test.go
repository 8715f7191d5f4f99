package img2uni

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAssets writes a codebook asset pair into dir and returns the two
// paths. desc is marshaled as-is; embeddings go out as little-endian f32.
func writeAssets(t *testing.T, dir string, desc descriptor, floats []float32) (string, string) {
	t.Helper()

	binPath := filepath.Join(dir, "encoder.embeddings.bin")
	descPath := filepath.Join(dir, "encoder.chars.json")

	buf := make([]byte, 4*len(floats))
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	require.NoError(t, os.WriteFile(binPath, buf, 0644))

	data, err := json.Marshal(&desc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(descPath, data, 0644))

	return binPath, descPath
}

func TestLoadCodebookNormalizesEmbeddings(t *testing.T) {
	binPath, descPath := writeAssets(t, t.TempDir(),
		descriptor{
			Chars:        []string{" ", "#", "▄"},
			EmbeddingDim: 3,
			Luminosities: []float32{0.0, 0.9, 0.5},
		},
		[]float32{
			2, 0, 0,
			0, 5, 0,
			1, 1, 1,
		},
	)

	cb, err := LoadCodebook(binPath, descPath)
	require.NoError(t, err)
	assert.Equal(t, 3, cb.Len())
	assert.Equal(t, 3, cb.Dim())

	// Every embedding must be unit-norm after load.
	for i := 0; i < cb.Len(); i++ {
		e := cb.Entry(i)
		var norm2 float64
		for _, v := range e.Embedding {
			norm2 += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm2), 1e-5, "entry %q", e.Char)
	}

	// Categories derive from codepoints when the descriptor omits them.
	assert.Equal(t, CategoryASCII, cb.Entry(0).Category)
	assert.Equal(t, CategoryASCII, cb.Entry(1).Category)
	assert.Equal(t, CategoryMonochrome, cb.Entry(2).Category)

	assert.InDelta(t, 0.9, cb.Entry(1).Luminosity, 1e-6)
}

func TestLoadCodebookCountMismatch(t *testing.T) {
	// Binary holds 5 floats, descriptor declares 2x3 = 6.
	binPath, descPath := writeAssets(t, t.TempDir(),
		descriptor{Chars: []string{"a", "b"}, EmbeddingDim: 3},
		[]float32{1, 2, 3, 4, 5},
	)

	_, err := LoadCodebook(binPath, descPath)
	var assetErr *AssetError
	require.ErrorAs(t, err, &assetErr)
}

func TestLoadCodebookUnknownCategory(t *testing.T) {
	binPath, descPath := writeAssets(t, t.TempDir(),
		descriptor{
			Chars:        []string{"a"},
			EmbeddingDim: 2,
			Categories:   []string{"sparkly"},
		},
		[]float32{1, 0},
	)

	_, err := LoadCodebook(binPath, descPath)
	var assetErr *AssetError
	require.ErrorAs(t, err, &assetErr)
	assert.Contains(t, err.Error(), "sparkly")
}

func TestLoadCodebookLuminosityCountMismatch(t *testing.T) {
	binPath, descPath := writeAssets(t, t.TempDir(),
		descriptor{
			Chars:        []string{"a", "b"},
			EmbeddingDim: 1,
			Luminosities: []float32{0.5},
		},
		[]float32{1, 2},
	)

	_, err := LoadCodebook(binPath, descPath)
	var assetErr *AssetError
	require.ErrorAs(t, err, &assetErr)
}

func TestLoadCodebookZeroNormEmbedding(t *testing.T) {
	binPath, descPath := writeAssets(t, t.TempDir(),
		descriptor{Chars: []string{"a"}, EmbeddingDim: 2},
		[]float32{0, 0},
	)

	_, err := LoadCodebook(binPath, descPath)
	var assetErr *AssetError
	require.ErrorAs(t, err, &assetErr)
}

func TestLoadCodebookMissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCodebook(filepath.Join(dir, "nope.bin"), filepath.Join(dir, "nope.json"))
	var assetErr *AssetError
	require.ErrorAs(t, err, &assetErr)
}

func TestCodebookSaveLoadRoundTrip(t *testing.T) {
	entries := []CodebookEntry{
		{Char: ' ', Embedding: []float32{1, 0, 0}, Category: CategoryASCII, Luminosity: 0},
		{Char: '▀', Embedding: []float32{0, 1, 0}, Category: CategoryMonochrome, Luminosity: 0.5},
		{Char: '★', Embedding: []float32{0, 0, 1}, Category: CategoryExtended, Luminosity: 0.4},
	}
	cb, err := NewCodebook(entries)
	require.NoError(t, err)

	dir := t.TempDir()
	binPath := filepath.Join(dir, "cb.bin")
	descPath := filepath.Join(dir, "cb.json")
	require.NoError(t, cb.Save(binPath, descPath))

	loaded, err := LoadCodebook(binPath, descPath)
	require.NoError(t, err)
	require.Equal(t, cb.Len(), loaded.Len())
	require.Equal(t, cb.Dim(), loaded.Dim())

	for i := 0; i < cb.Len(); i++ {
		want, got := cb.Entry(i), loaded.Entry(i)
		assert.Equal(t, want.Char, got.Char)
		assert.Equal(t, want.Category, got.Category)
		assert.InDelta(t, want.Luminosity, got.Luminosity, 1e-6)
		for j := range want.Embedding {
			assert.InDelta(t, want.Embedding[j], got.Embedding[j], 1e-6)
		}
	}
}

func TestFilterNesting(t *testing.T) {
	entries := []CodebookEntry{
		{Char: ' ', Embedding: []float32{1, 0}, Category: CategoryASCII},
		{Char: 'A', Embedding: []float32{0, 1}, Category: CategoryASCII},
		{Char: '▀', Embedding: []float32{1, 1}, Category: CategoryMonochrome},
		{Char: '░', Embedding: []float32{1, 2}, Category: CategoryMonochrome},
		{Char: '★', Embedding: []float32{2, 1}, Category: CategoryExtended},
	}
	cb, err := NewCodebook(entries)
	require.NoError(t, err)

	viewChars := func(v *View) map[rune]bool {
		set := make(map[rune]bool)
		for i := 0; i < v.Len(); i++ {
			set[v.Entry(i).Char] = true
		}
		return set
	}

	ascii := viewChars(cb.Filter(CharsetASCII))
	def := viewChars(cb.Filter(CharsetDefault))
	all := viewChars(cb.Filter(CharsetAll))

	assert.Subset(t, keys(def), keys(ascii), "ascii must be a subset of default")
	assert.Subset(t, keys(all), keys(def), "default must be a subset of all")
	assert.Len(t, ascii, 2)
	assert.Len(t, def, 4)
	assert.Len(t, all, 5)
}

func keys(m map[rune]bool) []rune {
	out := make([]rune, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestClassifyRune(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want Category
	}{
		{"Space", ' ', CategoryASCII},
		{"Tilde", '~', CategoryASCII},
		{"Latin1", 'ß', CategoryMonochrome},
		{"BoxDrawing", '─', CategoryMonochrome},
		{"BlockElement", '▓', CategoryMonochrome},
		{"GeometricShape", '◆', CategoryMonochrome},
		{"Star", '★', CategoryExtended},
		{"CJK", '漢', CategoryExtended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRune(tt.r))
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range []Category{CategoryASCII, CategoryMonochrome, CategoryExtended} {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("nope")
	assert.Error(t, err)
}

func TestParseCharsetMode(t *testing.T) {
	for _, m := range []CharsetMode{CharsetASCII, CharsetDefault, CharsetAll} {
		got, err := ParseCharsetMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseCharsetMode("everything")
	assert.Error(t, err)
}
