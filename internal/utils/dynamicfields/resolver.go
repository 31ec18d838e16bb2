// Package dynamicfields is the single place that translates between a logical
// field (name + declared type + value) and the typed storage slots of the
// dynamic-data table. Writers go through Expand, readers through Flatten;
// nothing else in the engine inspects the typed columns directly.
package dynamicfields

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ErrTypeMismatch indicates a value inconsistent with the declared field type.
var ErrTypeMismatch = fmt.Errorf("%w: value does not match declared field type", apperrors.ErrValidation)

const dateLayout = "2006-01-02"

// Expand converts a logical (name, declaredType, value) triple into a typed
// FieldValue. Unknown field names are permitted; unknown field types are not.
func Expand(fieldType domain.FieldType, raw any) (domain.FieldValue, error) {
	v := domain.FieldValue{Type: fieldType}
	if raw == nil {
		return v, fmt.Errorf("%w: nil value for %s field", ErrTypeMismatch, fieldType)
	}

	switch fieldType {
	case domain.FieldText:
		s, ok := raw.(string)
		if !ok {
			return v, fmt.Errorf("%w: expected string, got %T", ErrTypeMismatch, raw)
		}
		v.Text = &s

	case domain.FieldNumber:
		d, err := toDecimal(raw)
		if err != nil {
			return v, err
		}
		v.Number = &d

	case domain.FieldBoolean:
		b, ok := raw.(bool)
		if !ok {
			return v, fmt.Errorf("%w: expected boolean, got %T", ErrTypeMismatch, raw)
		}
		v.Boolean = &b

	case domain.FieldDate:
		t, err := toDate(raw)
		if err != nil {
			return v, err
		}
		v.Date = &t

	case domain.FieldJSON:
		b, err := toJSON(raw)
		if err != nil {
			return v, err
		}
		v.JSON = b

	default:
		return v, fmt.Errorf("%w: unknown field type %q", apperrors.ErrValidation, fieldType)
	}
	return v, nil
}

// Flatten projects a slice of dynamic fields back into a flat name -> value map
// for the composed entity view. The inverse of Expand for every supported type.
func Flatten(fields []domain.DynamicField) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.FieldName] = Value(f.Value)
	}
	return out
}

// Value extracts the populated slot of a FieldValue.
func Value(v domain.FieldValue) any {
	switch v.Type {
	case domain.FieldText:
		if v.Text != nil {
			return *v.Text
		}
	case domain.FieldNumber:
		if v.Number != nil {
			return *v.Number
		}
	case domain.FieldBoolean:
		if v.Boolean != nil {
			return *v.Boolean
		}
	case domain.FieldDate:
		if v.Date != nil {
			return *v.Date
		}
	case domain.FieldJSON:
		if v.JSON != nil {
			return v.JSON
		}
	}
	return nil
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch n := raw.(type) {
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q is not numeric", ErrTypeMismatch, n)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: expected number, got %T", ErrTypeMismatch, raw)
	}
}

func toDate(raw any) (time.Time, error) {
	switch d := raw.(type) {
	case time.Time:
		return d, nil
	case string:
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t, nil
		}
		if t, err := time.Parse(dateLayout, d); err == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrTypeMismatch, d)
	default:
		return time.Time{}, fmt.Errorf("%w: expected date, got %T", ErrTypeMismatch, raw)
	}
}

func toJSON(raw any) (json.RawMessage, error) {
	switch j := raw.(type) {
	case json.RawMessage:
		if !json.Valid(j) {
			return nil, fmt.Errorf("%w: invalid json document", ErrTypeMismatch)
		}
		return j, nil
	case string:
		if !json.Valid([]byte(j)) {
			return nil, fmt.Errorf("%w: invalid json document", ErrTypeMismatch)
		}
		return json.RawMessage(j), nil
	default:
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: value is not json-encodable", ErrTypeMismatch)
		}
		return b, nil
	}
}
