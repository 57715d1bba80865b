package coder

import "fmt"

// InvalidRuleError reports a declared rule string that failed to compile.
// A broken rule table cannot be trusted to resolve safely, so this is
// fatal to Build rather than skipped.
type InvalidRuleError struct {
	Code string
	Rule string
	Err  error
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid rule for %s: %q: %v", e.Code, e.Rule, e.Err)
}

func (e *InvalidRuleError) Unwrap() error {
	return e.Err
}

// UnknownCodeError reports a rule source entry for a code the registry
// does not know. Also fatal to Build.
type UnknownCodeError struct {
	Code string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown code %s in rule source", e.Code)
}
