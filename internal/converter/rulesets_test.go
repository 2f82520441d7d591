package converter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/endless-browser/resource-convert/internal/models"
	"github.com/endless-browser/resource-convert/internal/output"
	"github.com/endless-browser/resource-convert/internal/revision"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesDir = "https-everywhere/src/chrome/content/rules"

func testRulesetsConfig() models.RulesetsConfig {
	return models.RulesetsConfig{
		Dir:           rulesDir,
		Pattern:       "*.xml",
		Label:         "HTTPS Everywhere",
		TargetsOutput: "Resources/https-everywhere_targets.plist",
		RulesOutput:   "Resources/https-everywhere_rules.plist",
	}
}

func fixedRevision(rev string) revision.Func {
	return func(context.Context) (string, error) { return rev, nil }
}

func ruleset(name string, hosts ...string) string {
	doc := fmt.Sprintf("<ruleset name=%q>\n", name)
	for _, h := range hosts {
		doc += fmt.Sprintf("\t<target host=%q />\n", h)
	}
	doc += "\t<rule from=\"^http:\" to=\"https:\" />\n</ruleset>\n"
	return doc
}

func writeRuleset(t *testing.T, fs afero.Fs, file, doc string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, rulesDir+"/"+file, []byte(doc), 0644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestRulesetConverterRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeRuleset(t, fs, "EFF.xml", ruleset("EFF", "eff.org", "www.eff.org"))
	writeRuleset(t, fs, "Example.xml", ruleset("Example", "example.com"))
	writeRuleset(t, fs, "Off.xml", `<ruleset name="Off" default_off="broken"><target host="off.example" /><rule from="^http:" to="https:" /></ruleset>`)
	writeRuleset(t, fs, "Lookahead.xml", `<ruleset name="Lookahead">
	<target host="la.example" />
	<exclusion pattern="^http://la\.example/(?!secure)" />
	<securecookie host="^la\.example$" name="^(?!tracking).+" />
	<rule from="^http://(?!www\.)la\.example/" to="https://la.example/" />
</ruleset>`)
	require.NoError(t, afero.WriteFile(fs, rulesDir+"/README", []byte("not a ruleset"), 0644))

	c := NewRulesetConverter(fs, testRulesetsConfig(), fixedRevision("0123456789ab"), Options{})
	result, err := c.Run(context.Background(), false)
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, "0123456789ab", result.Revision)
	assert.Equal(t, 4, result.Files)
	assert.Equal(t, 3, result.Rulesets)
	assert.Equal(t, 4, result.Targets)
	assert.Equal(t, 1, result.Disabled)

	var targets map[string]string
	header, err := output.Read(fs, c.cfg.TargetsOutput, &targets)
	require.NoError(t, err)
	assert.Equal(t, "<!-- generated from HTTPS Everywhere 0123456789ab - do not directly edit this file -->", header)
	assert.Equal(t, map[string]string{
		"eff.org":     "EFF",
		"www.eff.org": "EFF",
		"example.com": "Example",
		"la.example":  "Lookahead",
	}, targets)

	var rules map[string]models.RulesetDocument
	header, err = output.Read(fs, c.cfg.RulesOutput, &rules)
	require.NoError(t, err)
	assert.Contains(t, header, "0123456789ab")
	require.Len(t, rules, 3)
	assert.NotContains(t, rules, "Off")
	assert.Equal(t, "EFF", rules["EFF"].Ruleset.Name)
	assert.Equal(t, []models.Rule{{From: "^http:", To: "https:"}}, rules["Example"].Ruleset.Rules)

	m, err := c.PreviousManifest()
	require.NoError(t, err)
	assert.Equal(t, models.Manifest{Label: "HTTPS Everywhere", Revision: "0123456789ab"}, m)
}

func TestRulesetConverterSkipsUnchangedRevision(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testRulesetsConfig()
	writeRuleset(t, fs, "Example.xml", ruleset("Example", "example.com"))

	_, err := NewRulesetConverter(fs, cfg, fixedRevision("aaaaaaaaaaaa"), Options{}).Run(context.Background(), false)
	require.NoError(t, err)
	targetsBefore := readFile(t, fs, cfg.TargetsOutput)
	rulesBefore := readFile(t, fs, cfg.RulesOutput)

	// would fail the run if it were read
	writeRuleset(t, fs, "Broken.xml", `<ruleset name="Broken"><target host="b.example" /><rule from="(" to="x" /></ruleset>`)

	result, err := NewRulesetConverter(fs, cfg, fixedRevision("aaaaaaaaaaaa"), Options{}).Run(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Zero(t, result.Files)
	assert.Equal(t, targetsBefore, readFile(t, fs, cfg.TargetsOutput))
	assert.Equal(t, rulesBefore, readFile(t, fs, cfg.RulesOutput))
}

func TestRulesetConverterForce(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testRulesetsConfig()
	writeRuleset(t, fs, "Example.xml", ruleset("Example", "example.com"))

	rev := fixedRevision("bbbbbbbbbbbb")
	_, err := NewRulesetConverter(fs, cfg, rev, Options{}).Run(context.Background(), false)
	require.NoError(t, err)

	writeRuleset(t, fs, "Other.xml", ruleset("Other", "other.example"))

	result, err := NewRulesetConverter(fs, cfg, rev, Options{}).Run(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.Rulesets)

	var targets map[string]string
	_, err = output.Read(fs, cfg.TargetsOutput, &targets)
	require.NoError(t, err)
	assert.Equal(t, "Other", targets["other.example"])
}

func TestRulesetConverterNewRevision(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testRulesetsConfig()
	writeRuleset(t, fs, "Example.xml", ruleset("Example", "example.com"))

	_, err := NewRulesetConverter(fs, cfg, fixedRevision("cccccccccccc"), Options{}).Run(context.Background(), false)
	require.NoError(t, err)

	result, err := NewRulesetConverter(fs, cfg, fixedRevision("dddddddddddd"), Options{}).Run(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Contains(t, readFile(t, fs, cfg.TargetsOutput), "HTTPS Everywhere dddddddddddd - ")
}

func TestRulesetConverterFailures(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		kind  error
		want  string
	}{
		{
			name: "duplicate ruleset name",
			files: map[string]string{
				"A.xml": ruleset("Same", "a.example"),
				"B.xml": ruleset("Same", "b.example"),
			},
			kind: models.ErrNameCollision,
			want: "B.xml",
		},
		{
			name: "overlapping target",
			files: map[string]string{
				"A.xml": ruleset("A", "shared.example"),
				"B.xml": ruleset("B", "b.example", "shared.example"),
			},
			kind: models.ErrTargetCollision,
			want: "rules already exist for shared.example",
		},
		{
			name: "invalid rule pattern",
			files: map[string]string{
				"Bad.xml": `<ruleset name="Bad"><target host="bad.example" /><rule from="^http://(bad" to="https://bad/" /></ruleset>`,
			},
			kind: models.ErrPatternCompile,
			want: "Bad.xml",
		},
		{
			name: "invalid securecookie name",
			files: map[string]string{
				"Cookie.xml": `<ruleset name="Cookie"><target host="c.example" /><securecookie host=".+" name="[" /><rule from="^http:" to="https:" /></ruleset>`,
			},
			kind: models.ErrPatternCompile,
			want: "securecookie name",
		},
		{
			name: "missing ruleset",
			files: map[string]string{
				"Empty.xml": `<rules />`,
			},
			kind: models.ErrMissingRuleset,
			want: "Empty.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			cfg := testRulesetsConfig()
			for file, doc := range tt.files {
				writeRuleset(t, fs, file, doc)
			}
			previous := []byte("<!-- generated from HTTPS Everywhere 000000000000 - do not directly edit this file -->\n<plist/>\n")
			require.NoError(t, afero.WriteFile(fs, cfg.TargetsOutput, previous, 0644))

			_, err := NewRulesetConverter(fs, cfg, fixedRevision("eeeeeeeeeeee"), Options{}).Run(context.Background(), false)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.want)

			assert.Equal(t, string(previous), readFile(t, fs, cfg.TargetsOutput))
			exists, err := afero.Exists(fs, cfg.RulesOutput)
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestRulesetConverterDryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := testRulesetsConfig()
	writeRuleset(t, fs, "Example.xml", ruleset("Example", "example.com"))

	result, err := NewRulesetConverter(fs, cfg, fixedRevision("ffffffffffff"), Options{DryRun: true}).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rulesets)

	exists, err := afero.Exists(fs, cfg.TargetsOutput)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRulesetConverterRevisionError(t *testing.T) {
	rev := func(context.Context) (string, error) { return "", errors.New("not a git repository") }
	_, err := NewRulesetConverter(afero.NewMemMapFs(), testRulesetsConfig(), rev, Options{}).Run(context.Background(), false)
	assert.ErrorContains(t, err, "not a git repository")
}

func TestRulesetIndexAdd(t *testing.T) {
	idx := NewRulesetIndex()
	rs := models.RuleSet{
		Name:    "Dup",
		Targets: []models.Target{{Host: "dup.example"}, {Host: "dup.example"}},
		Rules:   []models.Rule{{From: "^http:", To: "https:"}},
	}
	require.NoError(t, idx.Add("Dup.xml", rs))
	assert.Equal(t, map[string]string{"dup.example": "Dup"}, idx.Targets)
	assert.Len(t, idx.Rules, 1)

	err := idx.Add("Dup2.xml", rs)
	assert.ErrorIs(t, err, models.ErrNameCollision)
}
