package thread

import (
	"encoding/json"
	"math"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestParsePostTolerant(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		title string
		sub   string
		score *int
	}{
		{"complete", `{"title":"T","score":5,"subreddit_name_prefixed":"r/cars"}`, "T", "r/cars", intPtr(5)},
		{"float score", `{"title":"T","score":12.9}`, "T", "r/unknown", intPtr(12)},
		{"null score", `{"title":"T","score":null}`, "T", "r/unknown", nil},
		{"string score", `{"title":"T","score":"7"}`, "T", "r/unknown", intPtr(7)},
		{"huge score", `{"title":"T","score":1e30}`, "T", "r/unknown", intPtr(math.MaxInt)},
		{"huge integer score", `{"title":"T","score":99999999999999999999}`, "T", "r/unknown", intPtr(math.MaxInt)},
		{"huge negative score", `{"title":"T","score":-1e30}`, "T", "r/unknown", intPtr(math.MinInt)},
		{"junk score", `{"title":"T","score":"lots"}`, "T", "r/unknown", nil},
		{"wrong title type", `{"title":42,"subreddit":"cars"}`, "", "r/cars", nil},
		{"not an object", `[1,2,3]`, "", "r/unknown", nil},
		{"empty", ``, "", "r/unknown", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parsePost(json.RawMessage(tt.raw))
			if p.Title != tt.title {
				t.Errorf("title = %q, want %q", p.Title, tt.title)
			}
			if p.Subreddit != tt.sub {
				t.Errorf("subreddit = %q, want %q", p.Subreddit, tt.sub)
			}
			switch {
			case tt.score == nil && p.Score != nil:
				t.Errorf("score = %d, want nil", *p.Score)
			case tt.score != nil && (p.Score == nil || *p.Score != *tt.score):
				t.Errorf("score = %v, want %d", p.Score, *tt.score)
			}
		})
	}
}

func TestParseCommentReplies(t *testing.T) {
	tests := []struct {
		name    string
		replies string
		want    int
	}{
		{"empty string leaf", `""`, 0},
		{"null leaf", `null`, 0},
		{"number", `7`, 0},
		{"listing without data", `{"kind":"Listing"}`, 0},
		{"children not an array", `{"data":{"children":{}}}`, 0},
		{"two children", `{"data":{"children":[{"kind":"t1","data":{}},{"kind":"more","data":{}}]}}`, 2},
		{"skips malformed child", `{"data":{"children":[{"kind":1},{"kind":"t1","data":{}}]}}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseComment(json.RawMessage(`{"body":"x","replies":` + tt.replies + `}`))
			if len(c.Replies) != tt.want {
				t.Fatalf("replies = %d, want %d", len(c.Replies), tt.want)
			}
		})
	}
}

func TestParseCommentDefaults(t *testing.T) {
	c := parseComment(json.RawMessage(`{"body":null,"author":""}`))
	if c.Author != "unknown" {
		t.Errorf("author = %q, want unknown", c.Author)
	}
	if c.Body != "" {
		t.Errorf("body = %q, want empty", c.Body)
	}
	if s, ok := decodeFields(json.RawMessage(`{"body":null,"title":""}`)).str("body"); ok || s != "" {
		t.Errorf("null body = %q (present=%v), want absent", s, ok)
	}
	if _, ok := decodeFields(json.RawMessage(`{"title":""}`)).str("title"); !ok {
		t.Error("empty string should be reported as present")
	}
	if c.Score != nil {
		t.Errorf("score = %d, want nil", *c.Score)
	}
}

func TestDocumentLayout(t *testing.T) {
	tests := []struct {
		raw  string
		want Layout
	}{
		{`{"data":{}}`, LayoutMapping},
		{"  \n[1,2]", LayoutSequence},
		{`"text"`, LayoutScalar},
		{`42`, LayoutScalar},
		{`null`, LayoutScalar},
		{"   ", LayoutInvalid},
		{``, LayoutInvalid},
	}
	for _, tt := range tests {
		if got := Document(tt.raw).Layout(); got != tt.want {
			t.Errorf("Layout(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
