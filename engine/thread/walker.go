package thread

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultParentAuthor is attributed to top-level comments whose post
	// author is not known.
	DefaultParentAuthor = "Unknown"
	// DefaultMarker prefixes every line of a comment block, once per depth.
	DefaultMarker = ">"

	// absent is rendered for optional metadata (score, url, link_title)
	// that the export does not carry.
	absent = "null"
)

// sentinelBodies mark comments without content. Such a comment and all
// of its replies are left out of the output.
var sentinelBodies = map[string]bool{
	"[deleted]": true,
	"[removed]": true,
	"":          true,
}

// Walker flattens a comment tree into blocks, parents before replies.
type Walker struct {
	Normalize Normalizer
	Marker    string
}

// NewWalker returns a Walker using Normalize and DefaultMarker.
func NewWalker() Walker {
	return Walker{Normalize: Normalize, Marker: DefaultMarker}
}

// Walk renders the comments among children, starting at depth. The result
// is a new slice in depth-first pre-order with siblings in input order.
func (w Walker) Walk(children []Thing, parentAuthor string, depth int) []Block {
	if depth < 1 {
		depth = 1
	}
	var out []Block
	w.walk(&out, children, parentAuthor, depth)
	return out
}

func (w Walker) walk(acc *[]Block, children []Thing, parentAuthor string, depth int) {
	for _, child := range children {
		if child.Kind != KindComment {
			continue
		}
		c := child.Comment()
		if sentinelBodies[c.Body] {
			continue
		}
		*acc = append(*acc, Block{
			Kind:  KindComment,
			Depth: depth,
			Text:  w.render(c, parentAuthor, depth),
		})
		if len(c.Replies) > 0 {
			w.walk(acc, c.Replies, c.Author, depth+1)
		}
	}
}

func (w Walker) render(c CommentData, parentAuthor string, depth int) string {
	marker := w.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	normalize := w.Normalize
	if normalize == nil {
		normalize = Normalize
	}
	prefix := strings.Repeat(marker, depth)

	var context string
	if depth == 1 && c.LinkTitle != "" {
		context = fmt.Sprintf(" [Context: %s | Post: %s]", c.Subreddit, c.LinkTitle)
	}

	return fmt.Sprintf("%s Author: %s (Replying to %s)%s\n%s Score: %s\n%s %s",
		prefix, c.Author, parentAuthor, context,
		prefix, scoreText(c.Score),
		prefix, normalize(c.Body),
	)
}

func scoreText(score *int) string {
	if score == nil {
		return absent
	}
	return strconv.Itoa(*score)
}

func orAbsent(s string) string {
	if s == "" {
		return absent
	}
	return s
}
