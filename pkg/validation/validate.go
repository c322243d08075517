// Package validation decides which required fields of the current form state
// are unsatisfied. The result is data, not an error: passing fields are
// simply absent from the returned map.
package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-docgen/pkg/block"
	"github.com/goliatone/go-docgen/pkg/fieldcfg"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

// ErrorKindRequired marks a required field with no satisfying value.
const ErrorKindRequired ErrorKind = "required"

// Validate checks every required field against the current values mapping
// and returns the failing field names. Block-list fields follow a strict
// pessimistic policy: a single incomplete block fails the whole field, even
// when earlier blocks are complete. Partially filled blocks are treated as
// still in progress.
func Validate(fields []fieldcfg.Field, values map[string]any) map[string]ErrorKind {
	errors := make(map[string]ErrorKind)
	for _, field := range fields {
		if !field.Required {
			continue
		}
		if isEmpty(field, values[field.Name]) {
			errors[field.Name] = ErrorKindRequired
		}
	}
	return errors
}

func isEmpty(field fieldcfg.Field, value any) bool {
	if field.IsBlockField() {
		return blockListEmpty(field, value)
	}
	return strings.TrimSpace(stringify(value)) == ""
}

func blockListEmpty(field fieldcfg.Field, value any) bool {
	views := block.Views(value)
	if len(views) == 0 {
		return true
	}

	allowed := field.EffectiveAllowedTypes()
	for _, v := range views {
		if blockUnsatisfied(v, allowed) {
			return true
		}
	}
	return false
}

func blockUnsatisfied(v block.View, allowed []block.Kind) bool {
	textEmpty := strings.TrimSpace(v.Text) == ""
	imageEmpty := strings.TrimSpace(v.ImageData) == ""

	switch v.Kind {
	case block.KindText:
		return !kindAllowed(allowed, block.KindText) || textEmpty
	case block.KindImage:
		return !kindAllowed(allowed, block.KindImage) || imageEmpty
	}

	// Untyped block fallback. Under a single-allowed-type image field the
	// strict per-kind check applies; otherwise one non-empty payload is
	// enough. The asymmetry matches the documented policy.
	if len(allowed) == 1 && allowed[0] == block.KindImage {
		return imageEmpty
	}
	return textEmpty && imageEmpty
}

func kindAllowed(allowed []block.Kind, kind block.Kind) bool {
	for _, candidate := range allowed {
		if candidate == kind {
			return true
		}
	}
	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
