package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/WessleyAI/reddit-flatten/engine/thread"
)

const (
	// DefaultSeparator goes between blocks in joined output.
	DefaultSeparator = "\n\n---\n\n"
	// DefaultOutput is the file written when saving is chosen without a path.
	DefaultOutput = "cleaned.txt"
)

// Join concatenates the blocks' text with sep (DefaultSeparator if empty).
func Join(blocks []thread.Block, sep string) string {
	if sep == "" {
		sep = DefaultSeparator
	}
	return strings.Join(thread.Texts(blocks), sep)
}

// WriteFile writes text to path, creating parent directories as needed.
func WriteFile(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// BlockMessage is the envelope published for each block.
type BlockMessage struct {
	Source string `json:"source"`
	Shape  string `json:"shape"`
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	Kind   string `json:"kind"`
	Depth  int    `json:"depth,omitempty"`
	Text   string `json:"text"`
}

// Messages wraps every block of res for publishing. source names the export
// the blocks came from.
func Messages(source string, res thread.Result) []BlockMessage {
	out := make([]BlockMessage, len(res.Blocks))
	for i, b := range res.Blocks {
		out[i] = BlockMessage{
			Source: source,
			Shape:  res.Shape.String(),
			Index:  i,
			Total:  len(res.Blocks),
			Kind:   string(b.Kind),
			Depth:  b.Depth,
			Text:   b.Text,
		}
	}
	return out
}
