// Package output writes generated plist files.
//
// Every file starts with a single line provenance comment, followed by an
// XML property list. The comment is the only place the source revision is
// recorded, so it must stay on the first line.
package output

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"howett.net/plist"
)

const (
	headerPrefix = "<!-- generated from "
	headerSuffix = " - do not directly edit this file -->"
)

// Header returns the provenance comment for a file generated from provenance
func Header(provenance string) string {
	return headerPrefix + provenance + headerSuffix
}

// Encode renders v as an XML plist preceded by the provenance header
func Encode(provenance string, v any) ([]byte, error) {
	body, err := plist.MarshalIndent(v, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("encode plist: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(headerPrefix) + len(provenance) + len(headerSuffix) + 1)
	buf.WriteString(Header(provenance))
	buf.WriteByte('\n')
	buf.Write(body)
	return buf.Bytes(), nil
}

// Write encodes v and writes it to path in a single call
func Write(fs afero.Fs, path, provenance string, v any) error {
	data, err := Encode(provenance, v)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return afero.WriteFile(fs, path, data, 0644)
}

// ReadHeader returns the first line of path. A missing file yields an empty
// line and no error.
func ReadHeader(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Read decodes a generated file into v and returns its header line
func Read(fs afero.Fs, path string, v any) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}

	header, body, found := bytes.Cut(data, []byte("\n"))
	if !found || !bytes.HasPrefix(header, []byte(headerPrefix)) {
		return "", fmt.Errorf("%s: missing generated header", path)
	}
	if _, err := plist.Unmarshal(body, v); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return string(header), nil
}
