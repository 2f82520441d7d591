package models

import (
	"regexp"
	"strings"
)

// Manifest records which source revision a generated file was built from
type Manifest struct {
	Label    string
	Revision string
}

// Provenance returns the text embedded in the generated header
func (m Manifest) Provenance() string {
	if m.Revision == "" {
		return m.Label
	}
	return m.Label + " " + m.Revision
}

// Matches reports whether the manifest was produced from revision
func (m Manifest) Matches(revision string) bool {
	return m.Revision != "" && m.Revision == revision
}

// ParseManifest extracts the revision following label from a header line.
// It returns false when the line was not generated for label.
func ParseManifest(label, line string) (Manifest, bool) {
	if label == "" {
		return Manifest{}, false
	}
	re := regexp.MustCompile(regexp.QuoteMeta(label) + ` (.+?) - `)
	m := re.FindStringSubmatch(line)
	if m == nil {
		return Manifest{}, false
	}
	return Manifest{Label: label, Revision: strings.TrimSpace(m[1])}, true
}
