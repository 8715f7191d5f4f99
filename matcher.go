package img2uni

import "math"

// Match is the result of a codebook lookup.
type Match struct {
	// Index is the matched entry's position within the view.
	Index int

	// Char is the matched character.
	Char rune

	// Similarity is the raw cosine similarity in [-1, 1].
	Similarity float32
}

// BestMatch returns the view entry with maximum cosine similarity to the
// query embedding. The query is defensively normalized on a copy; the
// codebook side is pre-normalized at load, so similarity is a plain dot
// product over an exhaustive O(N*D) scan.
//
// On exact ties the entry with the lowest index in the view wins, so
// repeated identical inputs always produce identical output. The second
// return value is false for a degenerate query: zero norm, wrong
// dimension, or an empty view.
func (v *View) BestMatch(query []float32) (Match, bool) {
	return v.BestMatchBlended(query, 0, 1)
}

// BestMatchBlended scores entries as a weighted blend of shape and
// brightness:
//
//	score = w * (cos+1)/2 + (1-w) * (1 - |lum - entryLum|)
//
// where cos is cosine similarity and lum is the query cell's mean
// luminosity in [0, 1]. With edgeWeight 1 this reduces to a monotonic
// transform of cosine similarity and is exactly BestMatch.
func (v *View) BestMatchBlended(query []float32, lum, edgeWeight float32) (Match, bool) {
	if v.Len() == 0 || len(query) != v.cb.dim {
		return Match{}, false
	}

	q := make([]float32, len(query))
	copy(q, query)
	if !normalizeL2(q) {
		return Match{}, false
	}

	if edgeWeight < 0 {
		edgeWeight = 0
	} else if edgeWeight > 1 {
		edgeWeight = 1
	}

	best := Match{Index: -1}
	bestScore := float32(math.Inf(-1))

	for i := 0; i < v.Len(); i++ {
		e := v.Entry(i)
		cos := dot(q, e.Embedding)

		lumDiff := lum - e.Luminosity
		if lumDiff < 0 {
			lumDiff = -lumDiff
		}
		score := edgeWeight*(cos+1)*0.5 + (1-edgeWeight)*(1-lumDiff)

		// Strict > keeps the lowest-index entry on ties.
		if score > bestScore {
			bestScore = score
			best = Match{Index: i, Char: e.Char, Similarity: cos}
		}
	}

	return best, true
}

// dot computes the dot product of two equal-length vectors.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// normalizeL2 scales v to unit L2 norm in place. Returns false if v has
// (near) zero norm.
func normalizeL2(v []float32) bool {
	norm2 := dot(v, v)
	if norm2 < 1e-12 {
		return false
	}
	inv := 1 / float32(math.Sqrt(float64(norm2)))
	for i := range v {
		v[i] *= inv
	}
	return true
}
