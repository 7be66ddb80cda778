// Package validation checks raw form values against declarative field rules.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Values are raw form values keyed by field name
type Values map[string]string

// Clone returns a copy of v
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Errors maps a field name to its first failing message
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Rule is one check on a field value
type Rule struct {
	check     func(string) bool
	message   string
	allowZero bool
}

// Msg replaces the rule's message
func (r Rule) Msg(message string) Rule {
	r.message = message
	return r
}

// OrEmpty lets an empty value pass this rule
func (r Rule) OrEmpty() Rule {
	r.allowZero = true
	return r
}

func (r Rule) valid(value string) bool {
	if r.allowZero && value == "" {
		return true
	}
	return r.check(value)
}

// Field binds rules to a field name; rules run in order and the first failure wins
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered set of fields
type Schema []Field

// Validate returns the errors for v, empty when v is valid
func (s Schema) Validate(v Values) Errors {
	errs := Errors{}
	for _, f := range s {
		value := v[f.Name]
		for _, r := range f.Rules {
			if !r.valid(value) {
				errs[f.Name] = r.message
				break
			}
		}
	}
	return errs
}

var (
	timeOfDayRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	dateLayout  = "2006-01-02"
)

// Required rejects empty and whitespace-only values
func Required() Rule {
	return Rule{
		check:   func(s string) bool { return strings.TrimSpace(s) != "" },
		message: "This field is required",
	}
}

// MinLen requires at least n characters
func MinLen(n int) Rule {
	return Rule{
		check:   func(s string) bool { return utf8.RuneCountInString(s) >= n },
		message: fmt.Sprintf("Must be at least %d characters", n),
	}
}

// MaxLen allows at most n characters
func MaxLen(n int) Rule {
	return Rule{
		check:   func(s string) bool { return utf8.RuneCountInString(s) <= n },
		message: fmt.Sprintf("Must be at most %d characters", n),
	}
}

// IntRange requires an integer in [min, max]
func IntRange(min, max int) Rule {
	return Rule{
		check: func(s string) bool {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			return err == nil && n >= min && n <= max
		},
		message: fmt.Sprintf("Must be a whole number between %d and %d", min, max),
	}
}

// IntMin requires an integer of at least min
func IntMin(min int) Rule {
	return Rule{
		check: func(s string) bool {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			return err == nil && n >= min
		},
		message: fmt.Sprintf("Must be a whole number of at least %d", min),
	}
}

// OneOf requires one of the allowed values
func OneOf(allowed ...string) Rule {
	return Rule{
		check: func(s string) bool {
			for _, a := range allowed {
				if s == a {
					return true
				}
			}
			return false
		},
		message: "Must be one of: " + strings.Join(allowed, ", "),
	}
}

// URL requires an absolute http or https URL
func URL() Rule {
	return Rule{
		check: func(s string) bool {
			u, err := url.Parse(s)
			if err != nil || u.Host == "" {
				return false
			}
			return u.Scheme == "http" || u.Scheme == "https"
		},
		message: "Invalid URL",
	}
}

// TimeOfDay requires HH:MM on a 24 hour clock
func TimeOfDay() Rule {
	return Rule{
		check:   timeOfDayRe.MatchString,
		message: "Format must be HH:MM",
	}
}

// HexColor requires a value starting with #
func HexColor() Rule {
	return Rule{
		check:   func(s string) bool { return strings.HasPrefix(s, "#") },
		message: "Must be a hex color code",
	}
}

// Date requires YYYY-MM-DD
func Date() Rule {
	return Rule{
		check: func(s string) bool {
			_, err := time.Parse(dateLayout, s)
			return err == nil
		},
		message: "Date must be YYYY-MM-DD",
	}
}

// ParseDate parses a value accepted by Date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders t for a Date field; the zero time renders empty
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// Bool reads a checkbox value
func Bool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// FormatBool renders a checkbox value
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
