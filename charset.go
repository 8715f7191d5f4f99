package img2uni

import "fmt"

// Category tags a codebook entry for charset filtering.
type Category int

const (
	// CategoryASCII marks printable ASCII characters (0x20-0x7E).
	CategoryASCII Category = iota

	// CategoryMonochrome marks non-ASCII characters that render safely in
	// a monochrome terminal: Latin-1 Supplement, Box Drawing, Block
	// Elements, and Geometric Shapes.
	CategoryMonochrome

	// CategoryExtended marks everything else in the curated codebook,
	// including emoji and wide characters.
	CategoryExtended
)

func (c Category) String() string {
	switch c {
	case CategoryASCII:
		return "ascii"
	case CategoryMonochrome:
		return "monochrome-safe"
	case CategoryExtended:
		return "extended"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// ParseCategory parses a descriptor category tag. Unrecognized tags are a
// load-time error.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "ascii":
		return CategoryASCII, nil
	case "monochrome-safe":
		return CategoryMonochrome, nil
	case "extended":
		return CategoryExtended, nil
	default:
		return 0, fmt.Errorf("unrecognized category tag %q", s)
	}
}

// ClassifyRune derives the category for a character from its codepoint.
func ClassifyRune(r rune) Category {
	switch {
	case r >= 0x20 && r <= 0x7E:
		return CategoryASCII
	case r >= 0x00A0 && r <= 0x00FF, // Latin-1 Supplement
		r >= 0x2500 && r <= 0x257F, // Box Drawing
		r >= 0x2580 && r <= 0x259F, // Block Elements
		r >= 0x25A0 && r <= 0x25FF: // Geometric Shapes
		return CategoryMonochrome
	default:
		return CategoryExtended
	}
}

// CharsetMode selects which slice of the codebook the matcher may use.
type CharsetMode int

const (
	// CharsetASCII restricts matching to printable ASCII.
	CharsetASCII CharsetMode = iota

	// CharsetDefault uses the monochrome-safe subset (ASCII included).
	CharsetDefault

	// CharsetAll uses the entire curated codebook.
	CharsetAll
)

func (m CharsetMode) String() string {
	switch m {
	case CharsetASCII:
		return "ascii"
	case CharsetDefault:
		return "default"
	case CharsetAll:
		return "all"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseCharsetMode parses a charset mode name.
func ParseCharsetMode(s string) (CharsetMode, error) {
	switch s {
	case "ascii":
		return CharsetASCII, nil
	case "default":
		return CharsetDefault, nil
	case "all":
		return CharsetAll, nil
	default:
		return 0, fmt.Errorf("unknown charset mode %q (want ascii, default, or all)", s)
	}
}

// View is a read-only sub-view of a codebook for one charset mode. Views
// never mutate the underlying codebook; multiple views may coexist and be
// reused across conversions.
type View struct {
	cb      *Codebook
	indices []int
}

// Filter derives the read-only sub-view of the codebook for a charset
// mode. The view preserves codebook order, so matcher tie-breaks stay
// deterministic.
func (cb *Codebook) Filter(mode CharsetMode) *View {
	indices := make([]int, 0, len(cb.entries))
	for i, e := range cb.entries {
		switch mode {
		case CharsetASCII:
			if e.Category != CategoryASCII {
				continue
			}
		case CharsetDefault:
			if e.Category == CategoryExtended {
				continue
			}
		}
		indices = append(indices, i)
	}
	return &View{cb: cb, indices: indices}
}

// Len returns the number of entries in the view.
func (v *View) Len() int { return len(v.indices) }

// Entry returns the i-th entry of the view.
func (v *View) Entry(i int) CodebookEntry { return v.cb.entries[v.indices[i]] }
