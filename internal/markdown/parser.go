// Package markdown extracts the prose of Markdown documents with Goldmark so
// that it can be spell checked without code, HTML or link targets.
package markdown

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Segment kinds.
const (
	KindHeading   = "heading"
	KindParagraph = "paragraph"
	KindTable     = "table"
	KindText      = "text"
)

// TOCItem represents a table of contents entry
type TOCItem struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// Segment is one run of prose and the 1-based line it starts on.
type Segment struct {
	Line int    `json:"line"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// ParseResult contains the extracted prose
type ParseResult struct {
	Title    string    `json:"title"`
	TOC      []TOCItem `json:"toc"`
	Segments []Segment `json:"segments"`
}

// Parser handles markdown parsing with goldmark
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a new markdown parser with GFM extensions
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	return &Parser{md: md}
}

// IsMarkdown reports whether name has a Markdown extension.
func IsMarkdown(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// Parse extracts headings, paragraphs and table cells from source.
func (p *Parser) Parse(source []byte) (*ParseResult, error) {
	doc := p.md.Parser().Parse(text.NewReader(source))
	lines := newLineIndex(source)

	result := &ParseResult{}
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		var kind string
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			kind = KindHeading
			title := extractText(node, source)
			result.TOC = append(result.TOC, TOCItem{
				Level:  node.Level,
				Title:  title,
				Anchor: generateAnchor(title),
			})
		case *ast.Paragraph, *ast.TextBlock:
			kind = KindParagraph
		case *east.TableCell:
			kind = KindTable
		default:
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		start := proseText(n, source, &buf, -1)
		if s := strings.TrimSpace(buf.String()); s != "" && start >= 0 {
			result.Segments = append(result.Segments, Segment{Line: lines.line(start), Kind: kind, Text: s})
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.TOC) > 0 {
		result.Title = result.TOC[0].Title
	}
	return result, nil
}

// PlainSegments splits non-Markdown text into one segment per non-blank line.
func PlainSegments(content string) []Segment {
	var segs []Segment
	for i, line := range strings.Split(content, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			segs = append(segs, Segment{Line: i + 1, Kind: KindText, Text: s})
		}
	}
	return segs
}

// proseText writes the visible text under n into buf, leaving out code
// spans, raw HTML and bare links. It returns the source offset of the first
// text written, or start when there was none.
func proseText(n ast.Node, source []byte, buf *bytes.Buffer, start int) int {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			if start < 0 {
				start = c.Segment.Start
			}
			buf.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		case *ast.CodeSpan, *ast.RawHTML, *ast.AutoLink:
		default:
			start = proseText(child, source, buf, start)
		}
	}
	return start
}

// extractText extracts text content from a node
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	proseText(n, source, &buf, -1)
	return strings.TrimSpace(buf.String())
}

type lineIndex []int

func newLineIndex(source []byte) lineIndex {
	idx := lineIndex{0}
	for i, b := range source {
		if b == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

// line returns the 1-based line containing offset.
func (l lineIndex) line(offset int) int {
	return sort.Search(len(l), func(i int) bool { return l[i] > offset })
}

var (
	anchorStrip  = regexp.MustCompile(`[^a-z0-9\-\p{Han}\p{Hiragana}\p{Katakana}]`)
	anchorHyphen = regexp.MustCompile(`-+`)
)

// generateAnchor creates a URL-safe anchor from text
func generateAnchor(text string) string {
	anchor := strings.ToLower(text)
	anchor = strings.ReplaceAll(anchor, " ", "-")
	anchor = anchorStrip.ReplaceAllString(anchor, "")
	anchor = anchorHyphen.ReplaceAllString(anchor, "-")
	return strings.Trim(anchor, "-")
}
