package entity

// OptionSet is a choice value: a server-defined integer with an optional
// display label. Either part may be absent independently.
type OptionSet struct {
	Value *int
	Label string
}

// NewOptionSet creates an option set with both value and label present.
func NewOptionSet(value int, label string) OptionSet {
	return OptionSet{Value: &value, Label: label}
}

// HasValue reports whether the integer value is present.
func (o OptionSet) HasValue() bool {
	return o.Value != nil
}
