package domain

// Canonical remote field names. These match the column names the tabular
// target is expected to carry.
const (
	PropTitle      = "Name"
	PropDifficulty = "Difficulty"
	PropAcceptRate = "Acceptance Rate"
	PropTags       = "Topic Tags"
	PropFreq30     = "Freq 30d"
	PropFreq90     = "Freq 90d"
	PropFreq180    = "Freq 180d"
	PropGroup      = "Company"
)

// PropertyValue is the closed set of field value types this engine writes.
// Only fields carried in a PropertySet are ever sent to the target; anything
// else on the remote row (user notes, manual columns) is left untouched.
type PropertyValue interface {
	isPropertyValue()
}

// TitleValue is the row's title text, optionally hyperlinked.
type TitleValue struct {
	Text string
	Link string
}

// NumberValue is a numeric field value.
type NumberValue struct {
	Value float64
}

// SelectValue is a single-choice categorical field value.
type SelectValue struct {
	Option string
}

// MultiSelectValue is a multi-choice categorical field value.
type MultiSelectValue struct {
	Options []string
}

func (TitleValue) isPropertyValue()       {}
func (NumberValue) isPropertyValue()      {}
func (SelectValue) isPropertyValue()      {}
func (MultiSelectValue) isPropertyValue() {}

// Property is one named field assignment.
type Property struct {
	Name  string
	Value PropertyValue
}

// PropertySet is an ordered collection of field assignments. Order is the
// insertion order, which keeps serialized payloads deterministic.
type PropertySet struct {
	props []Property
}

// Set appends or replaces a field assignment.
func (ps *PropertySet) Set(name string, value PropertyValue) {
	for i := range ps.props {
		if ps.props[i].Name == name {
			ps.props[i].Value = value
			return
		}
	}
	ps.props = append(ps.props, Property{Name: name, Value: value})
}

// Get returns the value for a field name.
func (ps *PropertySet) Get(name string) (PropertyValue, bool) {
	for _, p := range ps.props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Properties returns the assignments in insertion order.
func (ps *PropertySet) Properties() []Property {
	return ps.props
}

// Len returns the number of assigned fields.
func (ps *PropertySet) Len() int {
	return len(ps.props)
}

// BuildRecordProperties assembles the managed field set for one record,
// including the group label when present.
func BuildRecordProperties(r Record, group string) PropertySet {
	var ps PropertySet
	ps.Set(PropTitle, TitleValue{Text: r.TitleKey(), Link: r.URL})
	ps.Set(PropFreq30, NumberValue{Value: r.Freq30})
	ps.Set(PropFreq90, NumberValue{Value: r.Freq90})
	ps.Set(PropFreq180, NumberValue{Value: r.Freq180})
	if r.AcceptanceRate != nil {
		ps.Set(PropAcceptRate, NumberValue{Value: *r.AcceptanceRate})
	}
	if r.Difficulty != "" {
		ps.Set(PropDifficulty, SelectValue{Option: r.Difficulty})
	}
	if len(r.Tags) > 0 {
		ps.Set(PropTags, MultiSelectValue{Options: r.Tags})
	}
	if group != "" {
		ps.Set(PropGroup, SelectValue{Option: group})
	}
	return ps
}

// BuildZeroProperties assembles the field set that resets the tracked
// frequency fields without touching anything else on the row.
func BuildZeroProperties() PropertySet {
	var ps PropertySet
	ps.Set(PropFreq30, NumberValue{Value: 0})
	ps.Set(PropFreq90, NumberValue{Value: 0})
	ps.Set(PropFreq180, NumberValue{Value: 0})
	return ps
}
