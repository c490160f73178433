package stanzamodel

// UnknownChildPolicy governs the engine's reaction to a child element the
// schema cannot place.
type UnknownChildPolicy int

const (
	// UnknownChildFail raises UnexpectedChildError.
	UnknownChildFail UnknownChildPolicy = iota
	// UnknownChildDrop drops and ignores the element and its subtree.
	UnknownChildDrop
)

// UnknownAttrPolicy governs the engine's reaction to an XML attribute the
// schema cannot place.
type UnknownAttrPolicy int

const (
	// UnknownAttrFail raises UnexpectedAttributeError.
	UnknownAttrFail UnknownAttrPolicy = iota
	// UnknownAttrDrop drops and ignores the attribute.
	UnknownAttrDrop
)

// UnknownTextPolicy governs the engine's reaction to character data the
// schema cannot place: text inside a ChildTag-bound element, or text in a
// class's element when the class has no Text property.
type UnknownTextPolicy int

const (
	// UnknownTextFail raises UnexpectedTextError.
	UnknownTextFail UnknownTextPolicy = iota
	// UnknownTextDrop drops and ignores the text.
	UnknownTextDrop
)

// ValidateMode is a bitflag selecting which sources of a value pass through
// a descriptor's Validator. FROM_RECV validates values arriving from parsed
// XML; FROM_CODE validates values assigned by user code; ALWAYS is both.
type ValidateMode int

const (
	ValidateFromRecv ValidateMode = 1 << iota
	ValidateFromCode
	ValidateAlways = ValidateFromRecv | ValidateFromCode
)

// FromRecv reports whether values parsed from XML should be validated.
func (m ValidateMode) FromRecv() bool { return m&ValidateFromRecv != 0 }

// FromCode reports whether values assigned by user code should be validated.
func (m ValidateMode) FromCode() bool { return m&ValidateFromCode != 0 }

// ValueSource distinguishes the two halves of write() that ValidateMode
// gates: code assignment vs. values arriving off the wire.
type ValueSource int

const (
	SourceCode ValueSource = iota
	SourceRecv
)
