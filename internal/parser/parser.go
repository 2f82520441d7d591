package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clbanning/mxj/v2"
	"github.com/endless-browser/resource-convert/internal/models"
)

func init() {
	// attribute keys come out bare ("host", not "-host")
	mxj.PrependAttrWithHyphen(false)
}

// Parser decodes HTTPS Everywhere ruleset files
type Parser struct {
	stats Stats
}

// Stats tracks parsing statistics
type Stats struct {
	Files      int
	Disabled   int
	Normalized int // targets coerced from the ["host", value] shape
}

// New creates a new parser
func New() *Parser {
	return &Parser{}
}

// Stats returns parsing statistics
func (p *Parser) Stats() Stats {
	return p.stats
}

// ParseRuleset decodes a single ruleset file into a RuleSet. The path is
// only used for diagnostics and to pick the decoder: ".json" files are
// decoded as JSON, everything else as XML.
func (p *Parser) ParseRuleset(path string, data []byte) (models.RuleSet, error) {
	p.stats.Files++

	record, err := decodeRecord(path, data)
	if err != nil {
		return models.RuleSet{}, &models.ConvertError{Kind: models.ErrDecode, Source: path, Cause: err}
	}

	root, ok := record["ruleset"].(map[string]any)
	if !ok {
		return models.RuleSet{}, &models.ConvertError{
			Kind:   models.ErrMissingRuleset,
			Source: path,
			Raw:    fmt.Sprintf("%v", record),
		}
	}

	rs, err := p.buildRuleset(root)
	if err != nil {
		var ce *models.ConvertError
		if errors.As(err, &ce) {
			ce.Source = path
			if ce.Raw == "" {
				ce.Raw = fmt.Sprintf("%v", record)
			}
		}
		return models.RuleSet{}, err
	}

	if rs.Disabled() {
		p.stats.Disabled++
	}
	return rs, nil
}

func decodeRecord(path string, data []byte) (map[string]any, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var record map[string]any
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, err
		}
		return record, nil
	}

	m, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, err
	}
	return map[string]any(m), nil
}

func (p *Parser) buildRuleset(root map[string]any) (models.RuleSet, error) {
	rs := models.RuleSet{
		Name:     stringField(root, "name"),
		Platform: stringField(root, "platform"),
	}
	if rs.Name == "" {
		return rs, &models.ConvertError{Kind: models.ErrMissingRuleset, Detail: "ruleset has no name"}
	}

	// presence alone disables the ruleset, the value is only a reason
	if v, ok := root["default_off"]; ok {
		rs.DefaultOff = fmt.Sprint(v)
		if rs.DefaultOff == "" {
			rs.DefaultOff = "true"
		}
		return rs, nil
	}

	for _, item := range asList(root["rule"]) {
		m, ok := item.(map[string]any)
		if !ok || !hasField(m, "from") {
			return rs, shapeError("rule", item)
		}
		rs.Rules = append(rs.Rules, models.Rule{
			From: stringField(m, "from"),
			To:   stringField(m, "to"),
		})
	}

	for _, item := range asList(root["securecookie"]) {
		m, ok := item.(map[string]any)
		if !ok || !hasField(m, "host") || !hasField(m, "name") {
			return rs, shapeError("securecookie", item)
		}
		rs.SecureCookies = append(rs.SecureCookies, models.SecureCookie{
			Host: stringField(m, "host"),
			Name: stringField(m, "name"),
		})
	}

	for _, item := range asList(root["exclusion"]) {
		m, ok := item.(map[string]any)
		if !ok || !hasField(m, "pattern") {
			return rs, shapeError("exclusion", item)
		}
		rs.Exclusions = append(rs.Exclusions, models.Exclusion{Pattern: stringField(m, "pattern")})
	}

	targets := asList(root["target"])
	if len(targets) == 0 {
		return rs, &models.ConvertError{Kind: models.ErrMalformedTarget, Detail: "ruleset has no targets"}
	}
	for _, item := range targets {
		target, pair, err := normalizeTarget(item)
		if err != nil {
			return rs, err
		}
		if pair {
			p.stats.Normalized++
		}
		rs.Targets = append(rs.Targets, target)
	}

	return rs, nil
}

// NormalizeTarget coerces a decoded target entry into a Target. Two shapes
// are accepted: an object {"host": value} and the two element list
// ["host", value]. Anything else is ErrMalformedTarget.
func NormalizeTarget(v any) (models.Target, error) {
	t, _, err := normalizeTarget(v)
	return t, err
}

func normalizeTarget(v any) (models.Target, bool, error) {
	switch e := v.(type) {
	case map[string]any:
		if host, ok := e["host"].(string); ok && host != "" {
			return models.Target{Host: host}, false, nil
		}
	case []any:
		if len(e) == 2 {
			key, _ := e[0].(string)
			host, _ := e[1].(string)
			if key == "host" && host != "" {
				return models.Target{Host: host}, true, nil
			}
		}
	case []string:
		if len(e) == 2 && e[0] == "host" && e[1] != "" {
			return models.Target{Host: e[1]}, true, nil
		}
	}
	return models.Target{}, false, &models.ConvertError{
		Kind: models.ErrMalformedTarget,
		Raw:  fmt.Sprintf("%#v", v),
	}
}

// asList treats a lone element as a list of one
func asList(v any) []any {
	switch e := v.(type) {
	case nil:
		return nil
	case []any:
		return e
	default:
		return []any{e}
	}
}

func hasField(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func shapeError(kind string, v any) error {
	return &models.ConvertError{
		Kind:   models.ErrMalformedShape,
		Detail: kind,
		Raw:    fmt.Sprintf("%#v", v),
	}
}
