package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files by converting the body to markdown with
// pipe tables.
type HTMLParser struct {
	conv *converter.Converter
}

// NewHTMLParser returns a parser with the table plugin enabled. Escaping is
// off so section numbers such as "2.5" survive as written.
func NewHTMLParser() *HTMLParser {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(table.WithHeaderPromotion(true)),
		),
		converter.WithEscapeMode(converter.EscapeModeDisabled),
	)
	return &HTMLParser{conv: conv}
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := findTitle(doc)
	root := findBody(doc)
	if root == nil {
		root = doc
	}
	stripNonContent(root)

	conv := p.conv
	if conv == nil {
		conv = NewHTMLParser().conv
	}
	md, err := conv.ConvertNode(root)
	if err != nil {
		return nil, fmt.Errorf("convert html: %w", err)
	}

	return &Document{
		Name:  BaseName(filename),
		Title: title,
		Text:  strings.TrimSpace(string(md)),
	}, nil
}

// stripNonContent removes page chrome that never holds policy text.
func stripNonContent(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			switch c.Data {
			case "script", "style", "nav", "footer", "header":
				n.RemoveChild(c)
				c = next
				continue
			}
		}
		stripNonContent(c)
		c = next
	}
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
