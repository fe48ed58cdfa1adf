package transcript

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/claimify/internal/model"
)

// blockTags hold one speaker turn each on typical transcript pages.
var blockTags = map[string]bool{
	"p": true, "li": true, "blockquote": true, "dd": true,
	"h1": true, "h2": true, "h3": true, "h4": true,
}

// FromHTML builds an index from a published transcript page. Each block
// element is treated as a line of text, so "Name: words" paragraphs become
// turns.
func FromHTML(r io.Reader, defaultSpeaker string, window int) (model.TranscriptIndex, error) {
	turns, err := TurnsFromHTML(r, defaultSpeaker)
	if err != nil {
		return model.TranscriptIndex{}, err
	}
	return FromTurns(turns, window), nil
}

// TurnsFromHTML extracts speaker turns from an HTML document.
func TurnsFromHTML(r io.Reader, defaultSpeaker string) ([]model.Turn, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "header", "footer":
				return
			}
			if blockTags[n.Data] {
				if text := visibleText(n); text != "" {
					lines = append(lines, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return ParseTurns(strings.Join(lines, "\n"), defaultSpeaker), nil
}

func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
