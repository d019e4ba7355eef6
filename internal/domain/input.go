package domain

import "encoding/json"

// InputField is the typed answer to a Field, sent back to resume the agent.
// Implemented by *TextInput, *NumberInput, *DateInput, *CheckboxInput and
// *RadioInput only.
type InputField interface {
	Type() FieldType
	FieldID() string
	isInputField()
}

// TextInput answers a TextField.
type TextInput struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// NumberInput answers a NumberField.
type NumberInput struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// DateInput answers a DateField with a YYYY-MM-DD string, or "" when no date
// was chosen.
type DateInput struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// CheckboxInput answers a CheckboxField. Values keep selection order.
type CheckboxInput struct {
	ID     string   `json:"id"`
	Values []string `json:"values"`
}

// RadioInput answers a RadioField.
type RadioInput struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

func (*TextInput) Type() FieldType     { return FieldText }
func (*NumberInput) Type() FieldType   { return FieldNumber }
func (*DateInput) Type() FieldType     { return FieldDate }
func (*CheckboxInput) Type() FieldType { return FieldCheckbox }
func (*RadioInput) Type() FieldType    { return FieldRadio }

func (i *TextInput) FieldID() string     { return i.ID }
func (i *NumberInput) FieldID() string   { return i.ID }
func (i *DateInput) FieldID() string     { return i.ID }
func (i *CheckboxInput) FieldID() string { return i.ID }
func (i *RadioInput) FieldID() string    { return i.ID }

func (*TextInput) isInputField()     {}
func (*NumberInput) isInputField()   {}
func (*DateInput) isInputField()     {}
func (*CheckboxInput) isInputField() {}
func (*RadioInput) isInputField()    {}

// MarshalJSON writes the answer with its type tag.
func (i *TextInput) MarshalJSON() ([]byte, error) {
	type alias TextInput
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldText, (*alias)(i)})
}

// MarshalJSON writes the answer with its type tag.
func (i *NumberInput) MarshalJSON() ([]byte, error) {
	type alias NumberInput
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldNumber, (*alias)(i)})
}

// MarshalJSON writes the answer with its type tag.
func (i *DateInput) MarshalJSON() ([]byte, error) {
	type alias DateInput
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldDate, (*alias)(i)})
}

// MarshalJSON writes the answer with its type tag. A nil selection is
// written as an empty list.
func (i *CheckboxInput) MarshalJSON() ([]byte, error) {
	type alias CheckboxInput
	out := *i
	if out.Values == nil {
		out.Values = []string{}
	}
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldCheckbox, (*alias)(&out)})
}

// MarshalJSON writes the answer with its type tag.
func (i *RadioInput) MarshalJSON() ([]byte, error) {
	type alias RadioInput
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldRadio, (*alias)(i)})
}
