package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the shape and semantics of a rule's value.
type Kind string

const (
	KindPresence Kind = "presence"
	KindRegex    Kind = "regex"
	KindList     Kind = "list"
	KindRange    Kind = "range"
	KindCustom   Kind = "custom"
)

// TargetField names the product label attribute a rule inspects.
type TargetField string

const (
	FieldName                TargetField = "name"
	FieldManufacturer        TargetField = "manufacturer"
	FieldMRP                 TargetField = "mrp"
	FieldNetQuantity         TargetField = "net_quantity"
	FieldCountryOfOrigin     TargetField = "country_of_origin"
	FieldConsumerCareDetails TargetField = "consumer_care_details"
	FieldDateOfManufacture   TargetField = "date_of_manufacture"
)

var (
	ErrInvalidRuleKind    = errors.New("invalid rule kind")
	ErrInvalidTargetField = errors.New("invalid target field")
	ErrMalformedRuleValue = errors.New("malformed rule value")
	ErrInvalidPattern     = errors.New("invalid pattern")
	ErrCorruptRule        = errors.New("corrupt rule")
)

// TargetFields returns the fixed set of inspectable label fields.
func TargetFields() []TargetField {
	return []TargetField{
		FieldName,
		FieldManufacturer,
		FieldMRP,
		FieldNetQuantity,
		FieldCountryOfOrigin,
		FieldConsumerCareDetails,
		FieldDateOfManufacture,
	}
}

// IsTargetField reports whether s names a known label field.
func IsTargetField(s string) bool {
	for _, f := range TargetFields() {
		if string(f) == s {
			return true
		}
	}
	return false
}

// IsKind reports whether s names a known rule kind.
func IsKind(s string) bool {
	switch Kind(s) {
	case KindPresence, KindRegex, KindList, KindRange, KindCustom:
		return true
	}
	return false
}

// Value is the canonical payload of a rule. Kind selects which payload
// fields are meaningful; Validate enforces that consistency, and every
// decode path returns only validated values.
type Value struct {
	Kind     Kind
	Required bool     // presence
	Pattern  string   // regex
	Allowed  []string // list
	Min      float64  // range
	Max      float64  // range
	Expr     string   // custom: opaque, interpreted by an external evaluator
}

// Validate checks that the payload is structurally consistent with Kind.
func (v Value) Validate() error {
	switch v.Kind {
	case KindPresence:
		if !v.Required {
			return fmt.Errorf("%w: presence value must be required", ErrMalformedRuleValue)
		}
	case KindRegex:
		if v.Pattern == "" {
			return fmt.Errorf("%w: regex value needs a pattern", ErrMalformedRuleValue)
		}
		if _, err := regexp.Compile(v.Pattern); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
	case KindList:
		if len(v.Allowed) == 0 {
			return fmt.Errorf("%w: list value needs at least one entry", ErrMalformedRuleValue)
		}
		for _, entry := range v.Allowed {
			if strings.TrimSpace(entry) == "" {
				return fmt.Errorf("%w: list entries must be non-empty", ErrMalformedRuleValue)
			}
		}
	case KindRange:
		if math.IsNaN(v.Min) || math.IsInf(v.Min, 0) || math.IsNaN(v.Max) || math.IsInf(v.Max, 0) {
			return fmt.Errorf("%w: range bounds must be finite", ErrMalformedRuleValue)
		}
		if v.Min > v.Max {
			return fmt.Errorf("%w: range min %v exceeds max %v", ErrMalformedRuleValue, v.Min, v.Max)
		}
	case KindCustom:
		// Opaque; interpretation is deferred to an external evaluator.
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRuleKind, v.Kind)
	}
	return nil
}

// DecodeText parses the single-line authoring form of a rule value for
// the given kind into its canonical value. The range form is
// "<min>-<max>" with a bare "-" separator, so negative bounds are not
// authorable as text; they can still be stored through the JSON codec.
func DecodeText(kind Kind, text string) (Value, error) {
	switch kind {
	case KindPresence:
		// The authoring input is ignored; presence is binary.
		return Value{Kind: KindPresence, Required: true}, nil
	case KindRegex:
		v := Value{Kind: KindRegex, Pattern: text}
		if err := v.Validate(); err != nil {
			return Value{}, err
		}
		return v, nil
	case KindList:
		var entries []string
		for _, tok := range strings.Split(text, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				entries = append(entries, tok)
			}
		}
		v := Value{Kind: KindList, Allowed: entries}
		if err := v.Validate(); err != nil {
			return Value{}, err
		}
		return v, nil
	case KindRange:
		parts := strings.Split(strings.TrimSpace(text), "-")
		if len(parts) != 2 {
			return Value{}, fmt.Errorf("%w: range must be \"<min>-<max>\", got %q", ErrMalformedRuleValue, text)
		}
		min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: range min %q is not a number", ErrMalformedRuleValue, parts[0])
		}
		max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: range max %q is not a number", ErrMalformedRuleValue, parts[1])
		}
		v := Value{Kind: KindRange, Min: min, Max: max}
		if err := v.Validate(); err != nil {
			return Value{}, err
		}
		return v, nil
	case KindCustom:
		return Value{Kind: KindCustom, Expr: text}, nil
	}
	return Value{}, fmt.Errorf("%w: %q", ErrInvalidRuleKind, kind)
}

// EncodeText renders a canonical value back into its single-line
// authoring form, e.g. for populating an edit form.
func EncodeText(v Value) string {
	switch v.Kind {
	case KindPresence:
		return `{"required":true}`
	case KindRegex:
		return v.Pattern
	case KindList:
		return strings.Join(v.Allowed, ", ")
	case KindRange:
		return formatBound(v.Min) + "-" + formatBound(v.Max)
	case KindCustom:
		return v.Expr
	}
	return ""
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// rangePayload is the stored JSON shape of a range value.
type rangePayload struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// presencePayload is the stored JSON shape of a presence value.
type presencePayload struct {
	Required bool `json:"required"`
}

// patternPayload is the stored JSON shape of a regex value.
type patternPayload struct {
	Pattern string `json:"pattern"`
}

// MarshalValue serializes a canonical value to the JSON form stored in
// a rule's value column. The shapes are the stored-data contract:
// presence {"required":true}, regex {"pattern":...}, list a string
// array, range {"min":...,"max":...}, custom a bare JSON string.
func MarshalValue(v Value) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}
	var payload any
	switch v.Kind {
	case KindPresence:
		payload = presencePayload{Required: true}
	case KindRegex:
		payload = patternPayload{Pattern: v.Pattern}
	case KindList:
		payload = v.Allowed
	case KindRange:
		payload = rangePayload{Min: v.Min, Max: v.Max}
	case KindCustom:
		payload = v.Expr
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rule value: %w", err)
	}
	return string(raw), nil
}

// UnmarshalValue parses a stored JSON value for the given kind back
// into its canonical form, validating shape consistency.
func UnmarshalValue(kind Kind, raw string) (Value, error) {
	if !IsKind(string(kind)) {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidRuleKind, kind)
	}
	v := Value{Kind: kind}
	var err error
	switch kind {
	case KindPresence:
		var p presencePayload
		if err = json.Unmarshal([]byte(raw), &p); err == nil {
			v.Required = p.Required
		}
	case KindRegex:
		var p patternPayload
		if err = json.Unmarshal([]byte(raw), &p); err == nil {
			v.Pattern = p.Pattern
		}
	case KindList:
		err = json.Unmarshal([]byte(raw), &v.Allowed)
	case KindRange:
		var p rangePayload
		if err = json.Unmarshal([]byte(raw), &p); err == nil {
			v.Min, v.Max = p.Min, p.Max
		}
	case KindCustom:
		err = json.Unmarshal([]byte(raw), &v.Expr)
	}
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformedRuleValue, err)
	}
	if err := v.Validate(); err != nil {
		return Value{}, err
	}
	return v, nil
}
