package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// paragraphsFromWordXML walks a WordprocessingML body and returns the text of
// each <w:p>. Text runs are concatenated; tabs and breaks become a space.
// A paragraph nested in a text box is emitted on its own when it closes and
// does not cut its enclosing paragraph short. mc:Fallback subtrees repeat
// the mc:Choice content and are skipped.
func paragraphsFromWordXML(content string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
	)
	current := func() *strings.Builder {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Fallback":
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("decode document xml: %w", err)
				}
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = true
			case "tab", "br", "cr":
				if b := current(); b != nil {
					b.WriteString(" ")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if b := current(); b != nil {
					paragraphs = append(paragraphs, b.String())
					open = open[:len(open)-1]
				}
			}
		case xml.CharData:
			if b := current(); inText && b != nil {
				b.Write(t)
			}
		}
	}
	return paragraphs, nil
}
