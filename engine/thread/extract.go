package thread

import (
	"encoding/json"
	"fmt"
)

// Extractor renders one export shape into blocks.
type Extractor interface {
	Shape() Shape
	Extract(doc Document) ([]Block, error)
}

// Option configures the extractors built by New.
type Option func(*config)

type config struct {
	normalize Normalizer
	walker    Walker
	filter    ProfileFilter
}

// WithNormalizer replaces the text normalizer used for post and comment bodies.
func WithNormalizer(n Normalizer) Option {
	return func(c *config) { c.normalize = n }
}

// WithMarker sets the depth marker used by the comment walker.
func WithMarker(m string) Option {
	return func(c *config) { c.walker.Marker = m }
}

// WithProfileFilter selects posts, comments or both for profile exports.
func WithProfileFilter(f ProfileFilter) Option {
	return func(c *config) { c.filter = f }
}

// New returns the extractor for shape.
func New(shape Shape, opts ...Option) (Extractor, error) {
	cfg := config{normalize: Normalize, walker: NewWalker(), filter: FilterBoth}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.normalize == nil {
		cfg.normalize = Normalize
	}
	cfg.walker.Normalize = cfg.normalize

	switch shape {
	case ShapeFeed:
		return &FeedExtractor{normalize: cfg.normalize}, nil
	case ShapeSinglePost:
		return &SinglePostExtractor{normalize: cfg.normalize, walker: cfg.walker}, nil
	case ShapeProfile:
		if cfg.filter < FilterBoth || cfg.filter > FilterComments {
			return nil, &SelectorError{Field: "filter", Value: fmt.Sprint(int(cfg.filter))}
		}
		return &ProfileExtractor{normalize: cfg.normalize, filter: cfg.filter}, nil
	case ShapeCommentsOnly:
		return &CommentsExtractor{walker: cfg.walker}, nil
	default:
		return nil, &SelectorError{Field: "shape", Value: fmt.Sprint(int(shape))}
	}
}

// FeedExtractor renders the posts of a subreddit or front-page listing.
type FeedExtractor struct {
	normalize Normalizer
}

func (e *FeedExtractor) Shape() Shape { return ShapeFeed }

func (e *FeedExtractor) Extract(doc Document) ([]Block, error) {
	switch layout := doc.Layout(); layout {
	case LayoutMapping:
	case LayoutSequence:
		return nil, mismatch(ShapeFeed, layout, "this looks like a single post file; use single-post or comments-only")
	default:
		return nil, mismatch(ShapeFeed, layout, "a feed export is a single listing object")
	}

	var blocks []Block
	for _, t := range listingChildren(json.RawMessage(doc)) {
		if t.Kind != KindPost {
			continue
		}
		p := t.Post()
		content := p.SelfText
		if content == "" {
			content = "URL: " + orAbsent(p.URL)
		}
		blocks = append(blocks, Block{
			Kind: KindPost,
			Text: fmt.Sprintf("POST\nTitle: %s\nAuthor: %s\nScore: %s\n\n%s",
				p.Title, p.Author, scoreText(p.Score), e.normalize(content)),
		})
	}
	return blocks, nil
}

// SinglePostExtractor renders a post followed by its whole comment thread.
// The export is the pair [post listing, comment listing].
type SinglePostExtractor struct {
	normalize Normalizer
	walker    Walker
}

func (e *SinglePostExtractor) Shape() Shape { return ShapeSinglePost }

func (e *SinglePostExtractor) Extract(doc Document) ([]Block, error) {
	const hint = "this does not appear to be a single post export"

	layout := doc.Layout()
	if layout != LayoutSequence {
		return nil, mismatch(ShapeSinglePost, layout, hint)
	}
	sections := doc.sections()
	if len(sections) != 2 {
		return nil, mismatch(ShapeSinglePost, layout, fmt.Sprintf("%s: expected 2 sections, found %d", hint, len(sections)))
	}

	var (
		post  PostData
		found bool
	)
	for _, t := range listingChildren(sections[0]) {
		if t.Kind == KindPost {
			post, found = t.Post(), true
			break
		}
	}
	if !found {
		return nil, mismatch(ShapeSinglePost, layout, hint+": the first section holds no post")
	}

	blocks := []Block{{
		Kind: KindPost,
		Text: fmt.Sprintf("SOURCE: Reddit Post\nTitle: %s\nAuthor: %s\nScore: %s\n\n%s",
			post.Title, post.Author, scoreText(post.Score), e.normalize(post.SelfText)),
	}}

	parent := post.Author
	if parent == "" {
		parent = "OP"
	}
	return append(blocks, e.walker.Walk(listingChildren(sections[1]), parent, 1)...), nil
}

// ProfileExtractor renders a user's post and comment history. Comments are
// rendered as they are, including deleted and removed ones.
type ProfileExtractor struct {
	normalize Normalizer
	filter    ProfileFilter
}

func (e *ProfileExtractor) Shape() Shape { return ShapeProfile }

func (e *ProfileExtractor) Extract(doc Document) ([]Block, error) {
	switch layout := doc.Layout(); layout {
	case LayoutMapping:
	case LayoutSequence:
		return nil, mismatch(ShapeProfile, layout, "profiles use feed-style JSON, not single-post JSON")
	default:
		return nil, mismatch(ShapeProfile, layout, "a profile export is a single listing object")
	}

	var blocks []Block
	for _, t := range listingChildren(json.RawMessage(doc)) {
		switch {
		case t.Kind == KindPost && e.filter.posts():
			p := t.Post()
			content := p.SelfText
			if content == "" {
				content = orAbsent(p.URL)
			}
			blocks = append(blocks, Block{
				Kind: KindPost,
				Text: fmt.Sprintf("--- USER POST [%s] ---\nTitle: %s\nScore: %s\n\n%s",
					p.Subreddit, p.Title, scoreText(p.Score), e.normalize(content)),
			})
		case t.Kind == KindComment && e.filter.comments():
			c := t.Comment()
			blocks = append(blocks, Block{
				Kind: KindComment,
				Text: fmt.Sprintf("> USER COMMENT [%s]\n> In Thread: %s\n> Score: %s\n> %s",
					c.Subreddit, orAbsent(c.LinkTitle), scoreText(c.Score), e.normalize(c.Body)),
			})
		}
	}
	return blocks, nil
}

// CommentsExtractor renders a bare comment tree. It accepts either a
// single-post pair, using its comment section, or a comment listing.
type CommentsExtractor struct {
	walker Walker
}

func (e *CommentsExtractor) Shape() Shape { return ShapeCommentsOnly }

func (e *CommentsExtractor) Extract(doc Document) ([]Block, error) {
	var children []Thing
	switch layout := doc.Layout(); layout {
	case LayoutSequence:
		sections := doc.sections()
		if len(sections) < 2 {
			return nil, mismatch(ShapeCommentsOnly, layout, fmt.Sprintf("expected a [post, comments] pair, found %d sections", len(sections)))
		}
		children = listingChildren(sections[1])
	case LayoutMapping:
		children = listingChildren(json.RawMessage(doc))
	default:
		return nil, mismatch(ShapeCommentsOnly, layout, "a comments export is a listing object or a [post, comments] pair")
	}
	return e.walker.Walk(children, DefaultParentAuthor, 1), nil
}
