package img2uni

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// CodebookEntry is one character in the codebook: the character itself,
// its L2-normalized embedding, the charset category it belongs to, and
// its mean rendered luminosity in [0, 1].
type CodebookEntry struct {
	Char       rune
	Embedding  []float32
	Category   Category
	Luminosity float32
}

// Codebook is the curated table of character-to-embedding mappings used
// for matching. It is loaded once, before any conversion, and never
// mutated afterward; reads require no locking.
type Codebook struct {
	dim     int
	entries []CodebookEntry
}

// descriptor is the JSON structure accompanying the binary embedding file.
// Categories and luminosities are optional; absent categories are derived
// from the codepoint, absent luminosities default to 0.5.
type descriptor struct {
	Chars        []string  `json:"chars"`
	EmbeddingDim int       `json:"embedding_dim"`
	Categories   []string  `json:"categories,omitempty"`
	Luminosities []float32 `json:"luminosities,omitempty"`
}

// NewCodebook builds a codebook from entries, normalizing every embedding
// in place. All embeddings must share the same nonzero dimension and have
// a nonzero norm.
func NewCodebook(entries []CodebookEntry) (*Codebook, error) {
	if len(entries) == 0 {
		return nil, &AssetError{Reason: "empty codebook"}
	}
	dim := len(entries[0].Embedding)
	if dim == 0 {
		return nil, &AssetError{Reason: "zero embedding dimension"}
	}

	for i := range entries {
		e := &entries[i]
		if len(e.Embedding) != dim {
			return nil, &AssetError{Reason: fmt.Sprintf(
				"entry %q has dimension %d, want %d", e.Char, len(e.Embedding), dim)}
		}
		if !normalizeL2(e.Embedding) {
			return nil, &AssetError{Reason: fmt.Sprintf(
				"entry %q has zero-norm embedding", e.Char)}
		}
	}

	return &Codebook{dim: dim, entries: entries}, nil
}

// LoadCodebook loads the codebook asset pair: a flat little-endian float32
// binary of length N*D (row-major by character, then by dimension) and its
// JSON descriptor. Embeddings are normalized at load so matching can use a
// plain dot product.
func LoadCodebook(binPath, descPath string) (*Codebook, error) {
	descData, err := os.ReadFile(descPath)
	if err != nil {
		return nil, &AssetError{Path: descPath, Reason: "cannot read descriptor", cause: err}
	}

	var desc descriptor
	if err := json.Unmarshal(descData, &desc); err != nil {
		return nil, &AssetError{Path: descPath, Reason: "malformed descriptor", cause: err}
	}
	if len(desc.Chars) == 0 {
		return nil, &AssetError{Path: descPath, Reason: "descriptor lists no characters"}
	}
	if desc.EmbeddingDim <= 0 {
		return nil, &AssetError{Path: descPath, Reason: fmt.Sprintf(
			"invalid embedding_dim %d", desc.EmbeddingDim)}
	}
	if desc.Categories != nil && len(desc.Categories) != len(desc.Chars) {
		return nil, &AssetError{Path: descPath, Reason: fmt.Sprintf(
			"category count %d does not match char count %d",
			len(desc.Categories), len(desc.Chars))}
	}
	if desc.Luminosities != nil && len(desc.Luminosities) != len(desc.Chars) {
		return nil, &AssetError{Path: descPath, Reason: fmt.Sprintf(
			"luminosity count %d does not match char count %d",
			len(desc.Luminosities), len(desc.Chars))}
	}

	binData, err := os.ReadFile(binPath)
	if err != nil {
		return nil, &AssetError{Path: binPath, Reason: "cannot read embeddings", cause: err}
	}
	if len(binData)%4 != 0 {
		return nil, &AssetError{Path: binPath, Reason: fmt.Sprintf(
			"binary size %d is not a multiple of 4", len(binData))}
	}

	n, dim := len(desc.Chars), desc.EmbeddingDim
	if len(binData)/4 != n*dim {
		return nil, &AssetError{Path: binPath, Reason: fmt.Sprintf(
			"binary holds %d floats, descriptor declares %d x %d",
			len(binData)/4, n, dim)}
	}

	entries := make([]CodebookEntry, n)
	for i := 0; i < n; i++ {
		ch, err := firstRune(desc.Chars[i])
		if err != nil {
			return nil, &AssetError{Path: descPath, Reason: fmt.Sprintf(
				"entry %d: %v", i, err)}
		}

		emb := make([]float32, dim)
		for j := 0; j < dim; j++ {
			bits := binary.LittleEndian.Uint32(binData[(i*dim+j)*4:])
			emb[j] = math.Float32frombits(bits)
		}

		cat := ClassifyRune(ch)
		if desc.Categories != nil {
			cat, err = ParseCategory(desc.Categories[i])
			if err != nil {
				return nil, &AssetError{Path: descPath, Reason: fmt.Sprintf(
					"entry %d (%q): %v", i, ch, err)}
			}
		}

		lum := float32(0.5)
		if desc.Luminosities != nil {
			lum = desc.Luminosities[i]
		}

		entries[i] = CodebookEntry{Char: ch, Embedding: emb, Category: cat, Luminosity: lum}
	}

	cb, err := NewCodebook(entries)
	if err != nil {
		if ae, ok := err.(*AssetError); ok && ae.Path == "" {
			ae.Path = binPath
		}
		return nil, err
	}
	return cb, nil
}

// Save persists the codebook as the binary/descriptor asset pair consumed
// by LoadCodebook.
func (cb *Codebook) Save(binPath, descPath string) error {
	binData := make([]byte, 0, len(cb.entries)*cb.dim*4)
	var scratch [4]byte
	for _, e := range cb.entries {
		for _, v := range e.Embedding {
			binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
			binData = append(binData, scratch[:]...)
		}
	}
	if err := os.WriteFile(binPath, binData, 0644); err != nil {
		return fmt.Errorf("write embeddings: %w", err)
	}

	desc := descriptor{
		EmbeddingDim: cb.dim,
		Chars:        make([]string, len(cb.entries)),
		Categories:   make([]string, len(cb.entries)),
		Luminosities: make([]float32, len(cb.entries)),
	}
	for i, e := range cb.entries {
		desc.Chars[i] = string(e.Char)
		desc.Categories[i] = e.Category.String()
		desc.Luminosities[i] = e.Luminosity
	}

	descData, err := json.MarshalIndent(&desc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}
	if err := os.WriteFile(descPath, descData, 0644); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}
	return nil
}

// Dim returns the embedding dimension.
func (cb *Codebook) Dim() int { return cb.dim }

// Len returns the number of entries.
func (cb *Codebook) Len() int { return len(cb.entries) }

// Entry returns the i-th entry.
func (cb *Codebook) Entry(i int) CodebookEntry { return cb.entries[i] }

// firstRune extracts the single Unicode scalar a descriptor string must
// hold.
func firstRune(s string) (rune, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0, fmt.Errorf("empty character string")
	}
	return runes[0], nil
}
