package img2uni

import (
	"context"
	"fmt"
	"sort"

	"github.com/golang/freetype/truetype"
)

// DefaultDistinctThreshold is the maximum pairwise cosine similarity
// allowed between any two characters retained by curation. Trained
// codebooks are keyed to the exact list this threshold produced; changing
// it requires regenerating the assets.
const DefaultDistinctThreshold = 0.85

// Candidate is one curation input: a character and the embedding produced
// by running its rendered cell through the same extraction pipeline used
// at inference time.
type Candidate struct {
	Char       rune
	Embedding  []float32
	Luminosity float32
}

// CurateDistinct builds a codebook from a candidate pool by greedy
// pairwise-similarity pruning. Candidates are visited in ascending
// codepoint order; each is accepted only if its cosine similarity against
// every already-accepted member stays below threshold, otherwise it is
// discarded permanently.
//
// This is a greedy approximation to maximum-independent-set selection on
// the similarity graph, and the result is order-dependent. Do not reorder
// the iteration: any trained codebook is tied to the exact curated list
// this order produces. Candidates with zero-norm embeddings (characters
// the renderer could not draw) are discarded up front.
func CurateDistinct(pool []Candidate, threshold float32) (*Codebook, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("empty candidate pool")
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("invalid distinctness threshold %v", threshold)
	}

	sorted := make([]Candidate, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Char < sorted[j].Char })

	dim := len(sorted[0].Embedding)
	var accepted []CodebookEntry

	for _, cand := range sorted {
		if len(cand.Embedding) != dim {
			return nil, fmt.Errorf("candidate %q has dimension %d, want %d",
				cand.Char, len(cand.Embedding), dim)
		}

		emb := make([]float32, dim)
		copy(emb, cand.Embedding)
		if !normalizeL2(emb) {
			continue
		}

		distinct := true
		for _, a := range accepted {
			if dot(emb, a.Embedding) >= threshold {
				distinct = false
				break
			}
		}
		if !distinct {
			continue
		}

		accepted = append(accepted, CodebookEntry{
			Char:       cand.Char,
			Embedding:  emb,
			Category:   ClassifyRune(cand.Char),
			Luminosity: cand.Luminosity,
		})
	}

	if len(accepted) == 0 {
		return nil, fmt.Errorf("no candidates survived curation")
	}
	return NewCodebook(accepted)
}

// BuildPool renders each rune to a cell with the given font, embeds it,
// and returns the candidate pool for curation. Embedding calls run one at
// a time, in order; any provider failure aborts the whole pool.
func BuildPool(ctx context.Context, ttf *truetype.Font, runes []rune, e Embedder) ([]Candidate, error) {
	pool := make([]Candidate, 0, len(runes))
	for _, r := range runes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pix := RenderGlyphCell(ttf, r)
		emb, err := e.Embed(ctx, NewCellTensor(pix))
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", r, err)
		}
		if len(emb) != e.Dim() {
			return nil, fmt.Errorf("embed %q: provider returned %d floats, want %d",
				r, len(emb), e.Dim())
		}

		pool = append(pool, Candidate{
			Char:       r,
			Embedding:  emb,
			Luminosity: CellLuminosity(pix),
		})
	}
	return pool, nil
}
