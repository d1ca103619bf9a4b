package upgates

import (
	"bytes"
	"encoding/json"
)

// Opaque holds a JSON value whose shape the API does not fix (vouchers,
// loyalty points, attachments, product configurations, update messages).
// The raw bytes are kept verbatim so a decoded value re-encodes unchanged.
type Opaque json.RawMessage

// NewOpaque encodes v into an Opaque value.
func NewOpaque(v any) (Opaque, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Opaque(raw), nil
}

// MarshalJSON writes the stored bytes back, or null when empty.
func (o Opaque) MarshalJSON() ([]byte, error) {
	if len(o) == 0 {
		return []byte("null"), nil
	}
	return append([]byte(nil), o...), nil
}

// UnmarshalJSON stores a copy of data.
func (o *Opaque) UnmarshalJSON(data []byte) error {
	*o = append((*o)[:0], data...)
	return nil
}

// IsNull reports whether the value is absent or JSON null.
func (o Opaque) IsNull() bool {
	trimmed := bytes.TrimSpace(o)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode unmarshals the stored value into v.
func (o Opaque) Decode(v any) error {
	if o.IsNull() {
		return nil
	}
	return json.Unmarshal(o, v)
}

func (o Opaque) String() string { return string(o) }
