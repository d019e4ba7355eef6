package domain

import (
	"encoding/json"
	"fmt"
)

// FieldType tags field descriptors and field answers.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
)

// DateLayout is the wire format of date answers.
const DateLayout = "2006-01-02"

// Field describes the single structured input an interrupt asks for.
// Implemented by *TextField, *NumberField, *DateField, *CheckboxField and
// *RadioField only.
type Field interface {
	Type() FieldType
	FieldID() string
	FieldDescription() string
	isField()
}

// BaseField holds the fields common to every descriptor.
type BaseField struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// FieldID returns the descriptor id echoed back in the answer.
func (f BaseField) FieldID() string { return f.ID }

// FieldDescription returns the human-readable question.
func (f BaseField) FieldDescription() string { return f.Description }

// TextField asks for bounded free text.
type TextField struct {
	BaseField
	Placeholder string `json:"placeholder"`
	MaxLength   int    `json:"max_length"`
}

// NumberField asks for a number.
type NumberField struct {
	BaseField
}

// DateField asks for a calendar date.
type DateField struct {
	BaseField
}

// CheckboxField asks for any subset of Options.
type CheckboxField struct {
	BaseField
	Options []string `json:"options"`
}

// RadioField asks for exactly one of Options.
type RadioField struct {
	BaseField
	Options []string `json:"options"`
}

func (*TextField) Type() FieldType     { return FieldText }
func (*NumberField) Type() FieldType   { return FieldNumber }
func (*DateField) Type() FieldType     { return FieldDate }
func (*CheckboxField) Type() FieldType { return FieldCheckbox }
func (*RadioField) Type() FieldType    { return FieldRadio }

func (*TextField) isField()     {}
func (*NumberField) isField()   {}
func (*DateField) isField()     {}
func (*CheckboxField) isField() {}
func (*RadioField) isField()    {}

// MarshalJSON writes the descriptor with its type tag.
func (f *TextField) MarshalJSON() ([]byte, error) {
	type alias TextField
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldText, (*alias)(f)})
}

// MarshalJSON writes the descriptor with its type tag.
func (f *NumberField) MarshalJSON() ([]byte, error) {
	type alias NumberField
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldNumber, (*alias)(f)})
}

// MarshalJSON writes the descriptor with its type tag.
func (f *DateField) MarshalJSON() ([]byte, error) {
	type alias DateField
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldDate, (*alias)(f)})
}

// MarshalJSON writes the descriptor with its type tag.
func (f *CheckboxField) MarshalJSON() ([]byte, error) {
	type alias CheckboxField
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldCheckbox, (*alias)(f)})
}

// MarshalJSON writes the descriptor with its type tag.
func (f *RadioField) MarshalJSON() ([]byte, error) {
	type alias RadioField
	return json.Marshal(struct {
		Type FieldType `json:"type"`
		*alias
	}{FieldRadio, (*alias)(f)})
}

// DecodeField decodes a tagged field descriptor.
func DecodeField(raw json.RawMessage) (Field, error) {
	var tag typeTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("decode field tag: %w", err)
	}

	var field Field
	switch FieldType(tag.Type) {
	case FieldText:
		field = &TextField{}
	case FieldNumber:
		field = &NumberField{}
	case FieldDate:
		field = &DateField{}
	case FieldCheckbox:
		field = &CheckboxField{}
	case FieldRadio:
		field = &RadioField{}
	default:
		return nil, fmt.Errorf("%w: field %q", ErrUnknownTag, tag.Type)
	}

	if err := json.Unmarshal(raw, field); err != nil {
		return nil, fmt.Errorf("decode %s field: %w", tag.Type, err)
	}
	return field, nil
}
