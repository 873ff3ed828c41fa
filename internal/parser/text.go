package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text and markdown files. Lines pass through
// unchanged apart from line-ending normalization.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Document{
		Name: BaseName(filename),
		Text: strings.Join(lines, "\n"),
	}, nil
}
