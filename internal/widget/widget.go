// Package widget maps interrupt field descriptors to input controls and
// turns raw control values back into typed field answers.
//
// The mapping is stateless: For describes the control to draw for a field,
// Build validates what the user entered and produces the domain.InputField
// sent to the agent. Selection tracks toggle state for option lists on
// clients that keep it themselves.
package widget

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ashureev/agentchat/internal/domain"
)

// Validation errors mirror native form constraints. Their text is shown to
// the user as is.
var (
	ErrRequired      = errors.New("please fill out this field")
	ErrTooLong       = errors.New("value is too long")
	ErrInvalidDate   = errors.New("please enter a date as YYYY-MM-DD")
	ErrUnknownOption = errors.New("please choose one of the listed options")

	// ErrInvalidNumber also matches ErrRequired: a number input holding
	// something unparsable has no value.
	ErrInvalidNumber = fmt.Errorf("%w: please enter a number", ErrRequired)
)

// IsValidation reports whether err is a user input error from Build.
func IsValidation(err error) bool {
	return errors.Is(err, ErrRequired) ||
		errors.Is(err, ErrTooLong) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrUnknownOption)
}

// Control describes the single input control rendered for a field.
type Control struct {
	Type        domain.FieldType `json:"type"`
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	MaxLength   int              `json:"max_length,omitempty"`
	Options     []string         `json:"options,omitempty"`
	Multiple    bool             `json:"multiple"`
	Required    bool             `json:"required"`
}

// InputType returns the HTML input type for entry controls, or "" for option
// lists.
func (c Control) InputType() string {
	switch c.Type {
	case domain.FieldText:
		return "text"
	case domain.FieldNumber:
		return "number"
	case domain.FieldDate:
		return "date"
	default:
		return ""
	}
}

// HasOptions reports whether the control is a toggle list.
func (c Control) HasOptions() bool {
	return c.Type == domain.FieldCheckbox || c.Type == domain.FieldRadio
}

// For returns the control for field.
func For(field domain.Field) (Control, error) {
	switch f := field.(type) {
	case *domain.TextField:
		return Control{
			Type:        domain.FieldText,
			ID:          f.ID,
			Label:       f.Description,
			Placeholder: f.Placeholder,
			MaxLength:   f.MaxLength,
			Required:    true,
		}, nil
	case *domain.NumberField:
		return Control{Type: domain.FieldNumber, ID: f.ID, Label: f.Description, Required: true}, nil
	case *domain.DateField:
		return Control{
			Type:        domain.FieldDate,
			ID:          f.ID,
			Label:       f.Description,
			Placeholder: "YYYY-MM-DD",
			Required:    true,
		}, nil
	case *domain.CheckboxField:
		return Control{
			Type:     domain.FieldCheckbox,
			ID:       f.ID,
			Label:    f.Description,
			Options:  slices.Clone(f.Options),
			Multiple: true,
		}, nil
	case *domain.RadioField:
		return Control{
			Type:     domain.FieldRadio,
			ID:       f.ID,
			Label:    f.Description,
			Options:  slices.Clone(f.Options),
			Required: true,
		}, nil
	default:
		return Control{}, unknownField(field)
	}
}

// Build turns raw control values into the typed answer for field. Entry
// controls use raw[0]; option lists use every entry in order, which is the
// order the options were selected in.
func Build(field domain.Field, raw []string) (domain.InputField, error) {
	switch f := field.(type) {
	case *domain.TextField:
		v := first(raw)
		if v == "" {
			return nil, ErrRequired
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(v) > f.MaxLength {
			return nil, fmt.Errorf("%w: at most %d characters", ErrTooLong, f.MaxLength)
		}
		return &domain.TextInput{ID: f.ID, Value: v}, nil

	case *domain.NumberField:
		v := strings.TrimSpace(first(raw))
		if v == "" {
			return nil, ErrRequired
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, ErrInvalidNumber
		}
		return &domain.NumberInput{ID: f.ID, Value: n}, nil

	case *domain.DateField:
		v := strings.TrimSpace(first(raw))
		if v == "" {
			return nil, ErrRequired
		}
		d, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return nil, ErrInvalidDate
		}
		return &domain.DateInput{ID: f.ID, Value: d.Format(domain.DateLayout)}, nil

	case *domain.CheckboxField:
		values := make([]string, 0, len(raw))
		for _, v := range raw {
			if !slices.Contains(f.Options, v) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownOption, v)
			}
			if !slices.Contains(values, v) {
				values = append(values, v)
			}
		}
		return &domain.CheckboxInput{ID: f.ID, Values: values}, nil

	case *domain.RadioField:
		v := first(raw)
		if v == "" {
			return nil, ErrRequired
		}
		if !slices.Contains(f.Options, v) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOption, v)
		}
		return &domain.RadioInput{ID: f.ID, Value: v}, nil

	default:
		return nil, unknownField(field)
	}
}

// DisplayValue formats an answer for the chat history: checkbox values are
// joined with ", ", everything else is shown as entered.
func DisplayValue(value domain.InputField) (string, error) {
	switch v := value.(type) {
	case *domain.TextInput:
		return v.Value, nil
	case *domain.NumberInput:
		return formatNumber(v.Value), nil
	case *domain.DateInput:
		return v.Value, nil
	case *domain.CheckboxInput:
		return strings.Join(v.Values, ", "), nil
	case *domain.RadioInput:
		return v.Value, nil
	default:
		return "", fmt.Errorf("%w: input %T", domain.ErrUnknownTag, value)
	}
}

// formatNumber matches how browsers stringify numbers: plain decimals below
// 1e21, exponent form above.
func formatNumber(n float64) string {
	if math.Abs(n) >= 1e21 {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func first(raw []string) string {
	if len(raw) == 0 {
		return ""
	}
	return raw[0]
}

func unknownField(field domain.Field) error {
	if field == nil {
		return fmt.Errorf("%w: nil field", domain.ErrUnknownTag)
	}
	return fmt.Errorf("%w: field %q", domain.ErrUnknownTag, field.Type())
}
