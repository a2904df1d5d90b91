package thread

import "strings"

// Shape is one of the supported export layouts.
type Shape int

const (
	ShapeFeed Shape = iota + 1
	ShapeSinglePost
	ShapeProfile
	ShapeCommentsOnly
)

// Shapes lists every valid Shape in menu order.
var Shapes = []Shape{ShapeFeed, ShapeSinglePost, ShapeProfile, ShapeCommentsOnly}

func (s Shape) String() string {
	switch s {
	case ShapeFeed:
		return "feed"
	case ShapeSinglePost:
		return "single-post"
	case ShapeProfile:
		return "profile"
	case ShapeCommentsOnly:
		return "comments-only"
	default:
		return "unknown"
	}
}

// Description is the human label used in menus.
func (s Shape) Description() string {
	switch s {
	case ShapeFeed:
		return "Subreddit / community feed"
	case ShapeSinglePost:
		return "Single post (full thread)"
	case ShapeProfile:
		return "User profile / history"
	case ShapeCommentsOnly:
		return "Comments only"
	default:
		return "Unknown"
	}
}

var shapeNames = map[string]Shape{
	"1":             ShapeFeed,
	"feed":          ShapeFeed,
	"subreddit":     ShapeFeed,
	"2":             ShapeSinglePost,
	"single-post":   ShapeSinglePost,
	"post":          ShapeSinglePost,
	"3":             ShapeProfile,
	"profile":       ShapeProfile,
	"user":          ShapeProfile,
	"4":             ShapeCommentsOnly,
	"comments-only": ShapeCommentsOnly,
	"comments":      ShapeCommentsOnly,
}

// ParseShape accepts a menu number or a shape name, case-insensitively.
func ParseShape(s string) (Shape, error) {
	if shape, ok := shapeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return shape, nil
	}
	return 0, &SelectorError{Field: "shape", Value: s}
}

// ProfileFilter selects which entries of a profile export are rendered.
type ProfileFilter int

const (
	FilterBoth ProfileFilter = iota
	FilterPosts
	FilterComments
)

func (f ProfileFilter) String() string {
	switch f {
	case FilterPosts:
		return "posts-only"
	case FilterComments:
		return "comments-only"
	case FilterBoth:
		return "both"
	default:
		return "unknown"
	}
}

func (f ProfileFilter) posts() bool    { return f == FilterPosts || f == FilterBoth }
func (f ProfileFilter) comments() bool { return f == FilterComments || f == FilterBoth }

var filterNames = map[string]ProfileFilter{
	"p":             FilterPosts,
	"posts":         FilterPosts,
	"posts-only":    FilterPosts,
	"c":             FilterComments,
	"comments":      FilterComments,
	"comments-only": FilterComments,
	"b":             FilterBoth,
	"both":          FilterBoth,
}

// ParseProfileFilter accepts p/c/b or the long names, case-insensitively.
func ParseProfileFilter(s string) (ProfileFilter, error) {
	if f, ok := filterNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return 0, &SelectorError{Field: "filter", Value: s}
}
