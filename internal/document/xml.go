package document

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// Decode reads an XML document and feeds it through a [Builder]. Comments,
// processing instructions and directives are skipped. Namespaces are
// ignored, so namespace declarations and namespace-qualified attributes
// (e.g. xsi:schemaLocation) never reach the builder.
func Decode(r io.Reader) ([]Element, error) {
	b := NewBuilder()
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("(document) failed to read xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make([]Attribute, 0, len(t.Attr))
			for _, a := range t.Attr {
				if a.Name.Space != "" || a.Name.Local == "xmlns" {
					continue
				}
				attrs = append(attrs, Attribute{Key: a.Name.Local, Value: a.Value})
			}
			if err := b.StartTag(t.Name.Local, attrs); err != nil {
				return nil, fmt.Errorf("(document) line %d: %w", line(dec), err)
			}

		case xml.EndElement:
			if err := b.EndTag(t.Name.Local); err != nil {
				return nil, fmt.Errorf("(document) line %d: %w", line(dec), err)
			}

		case xml.CharData:
			if err := b.Text(string(t)); err != nil {
				return nil, fmt.Errorf("(document) line %d: %w", line(dec), err)
			}
		}
	}

	elements, err := b.Finish()
	if err != nil {
		return nil, fmt.Errorf("(document) %w", err)
	}

	return elements, nil
}

// DecodeFile opens the file at path and decodes it with [Decode].
func DecodeFile(path string) ([]Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("(document) failed to open: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

func line(dec *xml.Decoder) int {
	l, _ := dec.InputPos()

	return l
}
