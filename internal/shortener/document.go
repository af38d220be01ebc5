package shortener

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EmptyDocument is the encoding of a document with no shortlinks.
const EmptyDocument = "{}\n"

// Document maps an alias to its destination.
type Document map[string]string

// Decode parses the stored JSON text of a shortlink document. Anything but a JSON
// object of strings, including blank text, is malformed.
func Decode(text string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	// "null" unmarshals into a nil map without error.
	if doc == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedDocument)
	}

	return doc, nil
}

// Encode renders the document with 2-space indentation and a trailing newline.
// Keys are sorted, so repeated round trips are byte-identical.
func Encode(doc Document) (string, error) {
	if doc == nil {
		doc = Document{}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return "", err
	}

	return buf.String(), nil
}
