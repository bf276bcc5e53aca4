package journal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(tradeTimes, Trade{})
	return v
}

func tradeTimes(sl validator.StructLevel) {
	t := sl.Current().Interface().(Trade)
	if !t.ExitTime.IsZero() && !t.EntryTime.IsZero() && t.ExitTime.Before(t.EntryTime) {
		sl.ReportError(t.ExitTime, "ExitTime", "exit_time", "gtefield", "EntryTime")
	}
	if t.ExitPrice != 0 && t.ExitTime.IsZero() {
		sl.ReportError(t.ExitTime, "ExitTime", "exit_time", "required_with", "ExitPrice")
	}
	if t.EntryPrice == 0 && t.EntryTime.IsZero() {
		sl.ReportError(t.EntryPrice, "EntryPrice", "entry_price", "required_without", "EntryTime")
	}
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, tag := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, tag))
	}
	sort.Strings(parts)
	return "invalid: " + strings.Join(parts, ", ")
}

// Validate checks a struct with the journal's validator and converts
// validator errors into a *ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[snake(fe.Field())] = fe.Tag()
	}
	return out
}

// ValidateTrade checks a trade before it is written.
func ValidateTrade(t *Trade) error {
	return Validate(t)
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
