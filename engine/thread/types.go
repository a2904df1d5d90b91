// Package thread flattens Reddit JSON exports into readable text blocks.
// It classifies the export's top-level layout against a declared Shape,
// walks nested comment trees depth-first and renders posts and comments
// into Blocks ready to be joined by the caller.
package thread

import (
	"bytes"
	"encoding/json"
)

// Kind is the Reddit "thing" discriminator.
type Kind string

const (
	KindComment Kind = "t1"
	KindPost    Kind = "t3"
)

// Thing is one tagged entry of a listing. Data is decoded lazily into
// PostData or CommentData depending on Kind.
type Thing struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Post decodes the thing's data as a post.
func (t Thing) Post() PostData { return parsePost(t.Data) }

// Comment decodes the thing's data as a comment.
func (t Thing) Comment() CommentData { return parseComment(t.Data) }

// PostData holds the fields of a t3 thing used for rendering.
type PostData struct {
	Title     string
	Author    string
	SelfText  string
	URL       string
	Subreddit string
	Score     *int
}

// CommentData holds the fields of a t1 thing used for rendering.
type CommentData struct {
	Author    string
	Body      string
	LinkTitle string
	Subreddit string
	Score     *int
	Replies   []Thing
}

// Block is one rendered post or comment.
type Block struct {
	Kind  Kind
	Depth int
	Text  string
}

func (b Block) String() string { return b.Text }

// Texts returns the rendered text of each block, in order.
func Texts(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Text
	}
	return out
}

// Layout is the JSON type of a document's root value.
type Layout int

const (
	LayoutInvalid Layout = iota
	LayoutMapping
	LayoutSequence
	LayoutScalar
)

func (l Layout) String() string {
	switch l {
	case LayoutMapping:
		return "mapping"
	case LayoutSequence:
		return "sequence"
	case LayoutScalar:
		return "scalar"
	default:
		return "invalid"
	}
}

// Document is a parsed-and-validated export held as raw JSON.
type Document json.RawMessage

// Layout reports the root value's JSON type from its first significant byte.
func (d Document) Layout() Layout {
	trimmed := bytes.TrimLeft(d, " \t\r\n")
	if len(trimmed) == 0 {
		return LayoutInvalid
	}
	switch trimmed[0] {
	case '{':
		return LayoutMapping
	case '[':
		return LayoutSequence
	default:
		return LayoutScalar
	}
}

// sections splits a sequence root into its elements.
func (d Document) sections() []json.RawMessage {
	var out []json.RawMessage
	if err := json.Unmarshal(d, &out); err != nil {
		return nil
	}
	return out
}
