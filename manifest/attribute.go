package manifest

// Attribute selects which labeled property of a sample to index by.
type Attribute string

const (
	AttributeRace        Attribute = "race"
	AttributeGender      Attribute = "gender"
	AttributeAge         Attribute = "age"
	AttributeRecognition Attribute = "recognition"
)

// attributeSpec maps an attribute to its manifest column and the largest
// valid label. A negative maxLabel means unbounded above.
type attributeSpec struct {
	column   int
	maxLabel int
}

// Recognition lists reuse the second column for the identity id, so both
// race and recognition map to column 1.
var attributes = map[Attribute]attributeSpec{
	AttributeRace:        {column: 1, maxLabel: 4},
	AttributeGender:      {column: 2, maxLabel: 1},
	AttributeAge:         {column: 3, maxLabel: -1},
	AttributeRecognition: {column: 1, maxLabel: -1},
}

// Attributes returns the supported attribute selectors.
func Attributes() []Attribute {
	return []Attribute{AttributeRace, AttributeGender, AttributeAge, AttributeRecognition}
}

// Valid reports whether attr is a supported selector.
func (a Attribute) Valid() bool {
	_, ok := attributes[a]
	return ok
}
