package img2uni

import "fmt"

// AssetError indicates a problem with the codebook asset pair: missing or
// malformed files, an element-count mismatch between the binary and its
// descriptor, or a dimension mismatch against the embedding provider.
// Asset errors are raised at load time, before any conversion starts.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type AssetError struct {
	Path   string
	Reason string
	cause  error
}

func (e *AssetError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("codebook asset: %s", e.Reason)
	}
	return fmt.Sprintf("codebook asset %s: %s", e.Path, e.Reason)
}

func (e *AssetError) Unwrap() error { return e.cause }

// ConfigError indicates an invalid conversion configuration, such as a
// non-positive output width or height. Raised before any processing.
type ConfigError struct {
	Field string
	Value int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s = %d", e.Field, e.Value)
}

// DecodeError indicates the input bytes could not be decoded as an image.
// Fatal for the conversion call that received them.
//
// The original underlying error can be accessed via errors.Unwrap.
type DecodeError struct {
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// EmbedError indicates the embedding provider failed for a cell. The whole
// conversion terminates with this single error; no partial grid is emitted.
//
// The original underlying error can be accessed via errors.Unwrap.
type EmbedError struct {
	Row   int
	Col   int
	cause error
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("embed cell (%d,%d): %v", e.Row, e.Col, e.cause)
}

func (e *EmbedError) Unwrap() error { return e.cause }
