package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/endless-browser/resource-convert/internal/models"
)

// Block comments are stripped with a minimal non-nested pattern. Comment-like
// text inside string values is stripped too.
var reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

// StripBlockComments removes /* ... */ comments from data
func StripBlockComments(data []byte) []byte {
	return reBlockComment.ReplaceAll(data, nil)
}

// ParseBlocklist flattens a {"company": ["domain", ...]} document into a
// domain -> company mapping. Companies are applied in document order so a
// domain listed twice belongs to the last company that lists it.
func ParseBlocklist(source string, data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(StripBlockComments(data)))

	decodeErr := func(err error) error {
		return &models.ConvertError{Kind: models.ErrDecode, Source: source, Cause: err}
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, decodeErr(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, decodeErr(fmt.Errorf("expected object, got %v", tok))
	}

	targets := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, decodeErr(err)
		}
		company, ok := tok.(string)
		if !ok {
			return nil, decodeErr(fmt.Errorf("unexpected token %v", tok))
		}

		var domains []string
		if err := dec.Decode(&domains); err != nil {
			return nil, decodeErr(fmt.Errorf("%s: %w", company, err))
		}
		for _, d := range domains {
			targets[d] = company
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, decodeErr(err)
	}
	return targets, nil
}
