// Package markup turns markdown into sanitized HTML for blog posts and
// notification emails.
package markup

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md = goldmark.New(goldmark.WithExtensions(extension.GFM))

	ugcPolicy    *bluemonday.Policy
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
		ugcPolicy.RequireNoFollowOnLinks(true)
		ugcPolicy.AddTargetBlankToFullyQualifiedLinks(true)

		strictPolicy = bluemonday.StrictPolicy()
	})
}

// Render converts markdown to HTML and strips anything unsafe
// (scripts, event handlers, javascript: URLs).
func Render(source string) (string, error) {
	initPolicies()
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markup.Render: %w", err)
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}

// PlainText strips every tag from html and collapses whitespace.
func PlainText(html string) string {
	initPolicies()
	return strings.Join(strings.Fields(strictPolicy.Sanitize(html)), " ")
}

// Excerpt returns at most maxRunes runes of the rendered text of source,
// cut at a word boundary and marked with an ellipsis when shortened.
func Excerpt(source string, maxRunes int) (string, error) {
	html, err := Render(source)
	if err != nil {
		return "", err
	}
	text := PlainText(html)
	if utf8.RuneCountInString(text) <= maxRunes {
		return text, nil
	}
	cut := []rune(text)[:maxRunes]
	if i := strings.LastIndexByte(string(cut), ' '); i > 0 {
		return strings.TrimRight(string(cut)[:i], " ,.;:") + "…", nil
	}
	return string(cut) + "…", nil
}
