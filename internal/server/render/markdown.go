// Package render turns note markdown into HTML previews.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Preview is the rendered form of a note body.
type Preview struct {
	HTML    string `json:"html"`
	Summary string `json:"summary"`
}

// SummaryLines bounds how many paragraphs feed the plain-text summary.
const SummaryLines = 2

// md renders GitHub-flavoured markdown. Raw HTML in note bodies is
// dropped, since goldmark escapes it unless WithUnsafe is set.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders source to HTML and extracts a short plain-text summary.
func Markdown(source string) (*Preview, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return &Preview{HTML: buf.String(), Summary: Summary(source)}, nil
}

// Summary returns the text of the first paragraphs, skipping headings.
func Summary(source string) string {
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var parts []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindHeading:
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph:
			if line := strings.TrimSpace(plainText(n, src)); line != "" {
				parts = append(parts, line)
			}
			if len(parts) >= SummaryLines {
				return ast.WalkStop, nil
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(parts, " ")
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteString(plainText(c, src))
	}
	return b.String()
}
