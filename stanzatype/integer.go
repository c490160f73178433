package stanzatype

import "strconv"

// Integer parses/formats decimal signed 64-bit integers.
type Integer struct{}

func (Integer) Parse(text string) (any, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &FormatError{Value: text, Reason: "not a valid integer"}
	}
	return n, nil
}

func (Integer) Format(value any) string {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// NumericRange validates that an int64 or int value falls within [Min, Max]
// inclusive; a value of any other type fails. It is a Validator, not a Codec — pair
// it with Integer on an Attr/Text/ChildText descriptor.
type NumericRange struct {
	Min, Max int64
}

func (r NumericRange) Validate(value any) bool {
	var n int64
	switch v := value.(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	default:
		return false
	}
	return n >= r.Min && n <= r.Max
}
