package models

// RuleSet is a named bundle of rewrite rules, target hosts and secure cookie
// constraints read from one HTTPS Everywhere file
type RuleSet struct {
	Name          string         `plist:"name"`
	DefaultOff    string         `plist:"default_off,omitempty"` // reason the ruleset is disabled
	Platform      string         `plist:"platform,omitempty"`
	Targets       []Target       `plist:"target"`
	Rules         []Rule         `plist:"rule"`
	SecureCookies []SecureCookie `plist:"securecookie,omitempty"`
	Exclusions    []Exclusion    `plist:"exclusion,omitempty"`
}

// Disabled reports whether the ruleset is marked default_off
func (r RuleSet) Disabled() bool {
	return r.DefaultOff != ""
}

// RulesetDocument wraps a ruleset the way it appears at the top of its file
type RulesetDocument struct {
	Ruleset RuleSet `plist:"ruleset"`
}

// Target is a host pattern a ruleset applies to
type Target struct {
	Host string `plist:"host"`
}

// Rule rewrites URLs matching From into To
type Rule struct {
	From string `plist:"from"`
	To   string `plist:"to"`
}

// SecureCookie marks cookies matching Name on hosts matching Host as secure
type SecureCookie struct {
	Host string `plist:"host"`
	Name string `plist:"name"`
}

// Exclusion is a URL pattern the ruleset must not rewrite
type Exclusion struct {
	Pattern string `plist:"pattern"`
}
