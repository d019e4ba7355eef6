package widget

import (
	"slices"

	"github.com/ashureev/agentchat/internal/domain"
)

// Selection is the toggle state of a checkbox or radio control.
// Checkbox selections keep the order options were picked in.
type Selection struct {
	options  []string
	multiple bool
	chosen   []string
}

// NewSelection returns an empty selection for an option-list control, or nil
// for entry controls.
func NewSelection(c Control) *Selection {
	if !c.HasOptions() {
		return nil
	}
	return &Selection{options: c.Options, multiple: c.Multiple}
}

// Toggle flips option for checkboxes and selects it for radios. Unknown
// options are ignored. It reports whether option is selected afterwards.
func (s *Selection) Toggle(option string) bool {
	if !slices.Contains(s.options, option) {
		return false
	}
	if !s.multiple {
		s.chosen = []string{option}
		return true
	}
	if i := slices.Index(s.chosen, option); i >= 0 {
		s.chosen = slices.Delete(s.chosen, i, i+1)
		return false
	}
	s.chosen = append(s.chosen, option)
	return true
}

// Selected reports whether option is currently chosen.
func (s *Selection) Selected(option string) bool {
	return slices.Contains(s.chosen, option)
}

// Values returns the chosen options in selection order.
func (s *Selection) Values() []string {
	return slices.Clone(s.chosen)
}

// Options returns the options of the control.
func (s *Selection) Options() []string {
	return s.options
}

// BuildSelection is Build for an option-list field using s.
func BuildSelection(field domain.Field, s *Selection) (domain.InputField, error) {
	if s == nil {
		return Build(field, nil)
	}
	return Build(field, s.chosen)
}
