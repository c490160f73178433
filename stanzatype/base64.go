package stanzatype

import "encoding/base64"

// Base64 parses/formats standard (RFC 4648) base64 text into a byte slice,
// the way SASL challenge/response nonzas and similar XMPP payloads carry
// binary data as element text.
type Base64 struct{}

func (Base64) Parse(text string) (any, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, &FormatError{Value: text, Reason: "not valid base64"}
	}
	return data, nil
}

func (Base64) Format(value any) string {
	b, ok := value.([]byte)
	if !ok {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}
