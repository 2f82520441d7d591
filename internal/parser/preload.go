package parser

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/endless-browser/resource-convert/internal/models"
)

// The upstream preload JSON carries whole-line // comments
var reLineComment = regexp.MustCompile(`(?m)^[ \t]*//.*$`)

type preloadDocument struct {
	Entries *[]models.PreloadEntry `json:"entries"`
}

// DecodePreload unwraps a base64 encoded HSTS preload document and returns
// its entries. A missing include_subdomains decodes as false.
func DecodePreload(source string, body []byte) ([]models.PreloadEntry, error) {
	decodeErr := func(err error) error {
		return &models.ConvertError{Kind: models.ErrDecode, Source: source, Cause: err}
	}

	raw, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(body)))
	if err != nil {
		return nil, decodeErr(fmt.Errorf("base64: %w", err))
	}

	var doc preloadDocument
	if err := json.Unmarshal(reLineComment.ReplaceAll(raw, nil), &doc); err != nil {
		return nil, decodeErr(fmt.Errorf("json: %w", err))
	}
	if doc.Entries == nil {
		return nil, decodeErr(errors.New("document has no entries"))
	}

	for i, e := range *doc.Entries {
		if e.Name == "" {
			return nil, decodeErr(fmt.Errorf("entry %d has no name", i))
		}
	}
	return *doc.Entries, nil
}
