package cow

import (
	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	_ json.Marshaler        = (*String)(nil)
	_ json.Unmarshaler      = (*String)(nil)
	_ msgpack.CustomEncoder = (*String)(nil)
	_ msgpack.CustomDecoder = (*String)(nil)
)

// MarshalJSON encodes the committed content as a JSON string.
func (s *String) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON replaces the handle with one holding the decoded string
// and no spare capacity. A previous block reference is released; the zero
// value is also a valid target.
func (s *String) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	s.reset(text)
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder; string-typed on the wire.
func (s *String) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(s.String())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (s *String) DecodeMsgpack(dec *msgpack.Decoder) error {
	text, err := dec.DecodeString()
	if err != nil {
		return err
	}
	s.reset(text)
	return nil
}

func (s *String) reset(text string) {
	if s.b != nil {
		s.Drop()
	}
	*s = New(text, 0)
}
