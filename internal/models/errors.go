package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every one of them aborts the run.
var (
	ErrMissingRuleset  = errors.New("missing ruleset")
	ErrNameCollision   = errors.New("ruleset name collision")
	ErrTargetCollision = errors.New("target host collision")
	ErrPatternCompile  = errors.New("invalid pattern")
	ErrMalformedTarget = errors.New("malformed target")
	ErrMalformedShape  = errors.New("malformed record")
	ErrFetch           = errors.New("fetch failed")
	ErrDecode          = errors.New("decode failed")
)

// ConvertError describes a fatal conversion problem and where it came from
type ConvertError struct {
	Kind   error
	Source string // file path or URL
	Detail string
	Raw    string // raw parsed record, when available
	Cause  error
}

func (e *ConvertError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.Error()
	if e.Source != "" {
		msg = fmt.Sprintf("%s in %s", msg, e.Source)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Raw != "" {
		msg += " (" + e.Raw + ")"
	}
	return msg
}

// Is matches the error kind
func (e *ConvertError) Is(target error) bool {
	return e.Kind == target
}

func (e *ConvertError) Unwrap() error { return e.Cause }
