// Package yamlutil decodes and encodes the YAML used by md2site config and
// project export files. Callers never import the YAML library directly.
package yamlutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// DefaultMaxBytes caps documents read by this package (1MB).
const DefaultMaxBytes = 1 << 20

var (
	ErrEmptyDocument  = errors.New("yamlutil: empty document")
	ErrNilDestination = errors.New("yamlutil: nil destination")
	ErrDocumentTooBig = errors.New("yamlutil: document exceeds size limit")
	ErrDecode         = errors.New("yamlutil: decode failed")
	ErrEncode         = errors.New("yamlutil: encode failed")
	ErrReadDocument   = errors.New("yamlutil: cannot read document")
)

// Decoder holds the decoding limits. The zero value uses DefaultMaxBytes
// and accepts unknown keys.
type Decoder struct {
	MaxBytes int
	// Strict rejects keys that have no matching struct field.
	Strict bool
}

func (d Decoder) limit() int {
	if d.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return d.MaxBytes
}

// Decode parses data into v.
func (d Decoder) Decode(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmptyDocument
	}
	if len(data) > d.limit() {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrDocumentTooBig, len(data), d.limit())
	}
	if v == nil {
		return ErrNilDestination
	}

	var opts []yaml.DecodeOption
	if d.Strict {
		opts = append(opts, yaml.Strict())
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// DecodeFile reads path and parses it into v. Reading stops one byte past
// the limit so oversized files are rejected without loading them whole.
func (d Decoder) DecodeFile(path string, v any) error {
	f, err := os.Open(path) // #nosec G304 -- path comes from the caller
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadDocument, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, int64(d.limit())+1))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadDocument, err)
	}
	return d.Decode(data, v)
}

// Marshal encodes v as YAML.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out, nil
}
