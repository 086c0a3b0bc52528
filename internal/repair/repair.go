// Package repair ties the engine together: it detects the format of a
// piece of content, dispatches to the matching repairer, and exposes the
// top-level Repair / NeedsRepair / Confidence entry points.
package repair

import "strings"

// Repairer fixes malformed content of one format. Implementations are
// designed to always return some text; an error means recovery itself
// failed, not merely that the input was malformed.
type Repairer interface {
	Repair(content string) (string, error)
	NeedsRepair(content string) bool
	Confidence(content string) float64
}

// Validator reports whether content already satisfies a format's strict
// grammar.
type Validator interface {
	IsValid(content string) bool
	// Validate returns human-readable problems, empty when valid.
	Validate(content string) []string
}

// Repair detects the format of content and repairs it. Empty or
// whitespace-only input yields an empty string and no error.
func Repair(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	return ForFormat(Detect(content)).Repair(content)
}

// NeedsRepair reports whether content fails strict validation for its
// detected format. Empty input needs nothing.
func NeedsRepair(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	return ForFormat(Detect(content)).NeedsRepair(content)
}

// Confidence scores content against its detected format.
func Confidence(content string) float64 {
	if strings.TrimSpace(content) == "" {
		return 0
	}
	return ForFormat(Detect(content)).Confidence(content)
}
