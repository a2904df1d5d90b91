// Package export handles the file side of flattening: loading Reddit JSON
// exports, joining rendered blocks and writing or publishing the result.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"

	"github.com/WessleyAI/reddit-flatten/engine/thread"
)

// DefaultInput is the export file name used when none is given.
const DefaultInput = "reddit.json"

// Sentinel load failures.
var (
	ErrNotFound    = errors.New("export not found")
	ErrUnreadable  = errors.New("export unreadable")
	ErrInvalidJSON = errors.New("export is not valid JSON")
)

// LoadError reports why an export could not be turned into a document.
type LoadError struct {
	Path  string
	Kind  error
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("load %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Kind, e.Cause)
}

// Unwrap exposes both the load sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// controlChars are the C0 controls other than tab, newline and carriage
// return. Some exports carry them inside strings, which JSON forbids.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

// Sanitize removes control characters that would break JSON parsing.
func Sanitize(raw []byte) []byte {
	return controlChars.ReplaceAll(raw, nil)
}

// Load reads and validates the export at path.
func Load(path string) (thread.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Kind: ErrNotFound}
		}
		return nil, &LoadError{Path: path, Kind: ErrUnreadable, Cause: err}
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Decode reads an export from r, strips control characters and checks that
// what remains is a single JSON value.
func Decode(r io.Reader) (thread.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Path: "-", Kind: ErrUnreadable, Cause: err}
	}
	return Parse(raw)
}

// Parse sanitizes and validates raw export bytes.
func Parse(raw []byte) (thread.Document, error) {
	clean := Sanitize(raw)
	if !json.Valid(clean) {
		return nil, &LoadError{Path: "-", Kind: ErrInvalidJSON}
	}
	return thread.Document(clean), nil
}
