package thread

import (
	"encoding/json"
	"math"
)

const (
	defaultCommentAuthor = "unknown"
	defaultSubreddit     = "r/unknown"
)

// fields is a loosely typed view of a thing's data object. Every lookup
// degrades to a zero value when the key is missing or has the wrong type.
type fields map[string]json.RawMessage

func decodeFields(raw json.RawMessage) fields {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return f
}

// str reads a string field. A missing key, JSON null or a non-string
// value reports false.
func (f fields) str(key string) (string, bool) {
	v, ok := f[key]
	if !ok || string(v) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func (f fields) text(key string) string {
	s, _ := f.str(key)
	return s
}

// int reads a numeric field. Fractions are truncated and values beyond the
// int range are clamped; null, missing and non-numeric values yield nil.
func (f fields) int(key string) *int {
	v, ok := f[key]
	if !ok {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil || n == "" {
		return nil
	}
	if i, err := n.Int64(); err == nil {
		out := int(i)
		return &out
	}
	fl, err := n.Float64()
	if err != nil || math.IsNaN(fl) || math.IsInf(fl, 0) {
		return nil
	}
	var out int
	switch {
	case fl >= math.MaxInt:
		out = math.MaxInt
	case fl <= math.MinInt:
		out = math.MinInt
	default:
		out = int(math.Trunc(fl))
	}
	return &out
}

// subreddit prefers the prefixed label ("r/golang") and falls back to the
// bare name.
func (f fields) subreddit() string {
	if s := f.text("subreddit_name_prefixed"); s != "" {
		return s
	}
	if s := f.text("subreddit"); s != "" {
		return "r/" + s
	}
	return defaultSubreddit
}

func parsePost(raw json.RawMessage) PostData {
	f := decodeFields(raw)
	return PostData{
		Title:     f.text("title"),
		Author:    f.text("author"),
		SelfText:  f.text("selftext"),
		URL:       f.text("url"),
		Subreddit: f.subreddit(),
		Score:     f.int("score"),
	}
}

func parseComment(raw json.RawMessage) CommentData {
	f := decodeFields(raw)
	body := f.text("body")
	author := f.text("author")
	if author == "" {
		author = defaultCommentAuthor
	}
	c := CommentData{
		Author:    author,
		Body:      body,
		LinkTitle: f.text("link_title"),
		Subreddit: f.subreddit(),
		Score:     f.int("score"),
	}
	if replies, ok := f["replies"]; ok {
		c.Replies = listingChildren(replies)
	}
	return c
}

// listingChildren returns data.children of a listing object. Reddit uses
// the empty string for "no replies", which decodes to nil here like any
// other non-listing value. Children that are not things are dropped.
func listingChildren(raw json.RawMessage) []Thing {
	var l struct {
		Data struct {
			Children []json.RawMessage `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil
	}
	things := make([]Thing, 0, len(l.Data.Children))
	for _, c := range l.Data.Children {
		var t Thing
		if err := json.Unmarshal(c, &t); err != nil {
			continue
		}
		things = append(things, t)
	}
	return things
}
