package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OptionalDecimal distinguishes an absent field from an explicit null.
type OptionalDecimal struct {
	Set   bool
	Value decimal.NullDecimal
}

func (o *OptionalDecimal) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = decimal.NullDecimal{}
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	o.Value = decimal.NewNullDecimal(d)
	return nil
}

// NullDecimalOf builds an explicitly-set OptionalDecimal; a nil pointer means null.
func NullDecimalOf(d *decimal.Decimal) OptionalDecimal {
	if d == nil {
		return OptionalDecimal{Set: true}
	}
	return OptionalDecimal{Set: true, Value: decimal.NewNullDecimal(*d)}
}
