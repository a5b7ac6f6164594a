package schema

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// Validate checks structural rules that editing alone cannot guarantee:
// property names must be non-empty and unique per object and titles must fit
// MaxTitleLength. Number bounds must be finite, and every bound pair must be
// ordered and non-negative where it counts elements. All problems are
// reported, joined.
func Validate(root Node) error {
	if root == nil {
		return ErrNilNode
	}
	var errs []error
	_ = Walk(root, func(path Path, node Node) error {
		at := path.String()
		if at == "" {
			at = "<root>"
		}
		if utf8.RuneCountInString(node.Base().Title) > MaxTitleLength {
			errs = append(errs, fmt.Errorf("%w at %s", ErrTitleTooLong, at))
		}
		switch typed := node.(type) {
		case StringNode:
			errs = appendCountBounds(errs, at, "length", typed.MinLength, typed.MaxLength)
		case NumberNode:
			errs = appendFiniteBound(errs, at, "minimum", typed.Minimum)
			errs = appendFiniteBound(errs, at, "maximum", typed.Maximum)
			if typed.Minimum != nil && typed.Maximum != nil && *typed.Minimum > *typed.Maximum {
				errs = append(errs, fmt.Errorf("%w at %s: minimum %v > maximum %v", ErrInvertedBounds, at, *typed.Minimum, *typed.Maximum))
			}
		case ArrayNode:
			errs = appendCountBounds(errs, at, "items", typed.MinItems, typed.MaxItems)
		case ObjectNode:
			seen := make(map[string]struct{}, len(typed.Properties))
			for i, prop := range typed.Properties {
				if prop.Name == "" {
					errs = append(errs, fmt.Errorf("%w at %s (property %d)", ErrEmptyPropertyName, at, i))
					continue
				}
				if _, dup := seen[prop.Name]; dup {
					errs = append(errs, fmt.Errorf("%w %q at %s", ErrDuplicateProperty, prop.Name, at))
					continue
				}
				seen[prop.Name] = struct{}{}
			}
		}
		return nil
	})
	return errors.Join(errs...)
}

func appendFiniteBound(errs []error, at, label string, v *float64) []error {
	if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		errs = append(errs, fmt.Errorf("%w at %s: %s %v", ErrNonFiniteBound, at, label, *v))
	}
	return errs
}

func appendCountBounds(errs []error, at, label string, lo, hi *int) []error {
	if lo != nil && *lo < 0 {
		errs = append(errs, fmt.Errorf("%w at %s: min %s %d", ErrNegativeBound, at, label, *lo))
	}
	if hi != nil && *hi < 0 {
		errs = append(errs, fmt.Errorf("%w at %s: max %s %d", ErrNegativeBound, at, label, *hi))
	}
	if lo != nil && hi != nil && *lo > *hi {
		errs = append(errs, fmt.Errorf("%w at %s: min %s %d > max %s %d", ErrInvertedBounds, at, label, *lo, label, *hi))
	}
	return errs
}
