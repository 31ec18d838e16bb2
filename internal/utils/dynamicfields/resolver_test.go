package dynamicfields

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
)

func TestExpandText(t *testing.T) {
	v, err := Expand(domain.FieldText, "hello")
	require.NoError(t, err)
	require.NotNil(t, v.Text)
	assert.Equal(t, "hello", *v.Text)
	assert.Nil(t, v.Number)
}

func TestExpandNumberFromVariousInputs(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want string
	}{
		{"decimal", decimal.RequireFromString("10.50"), "10.5"},
		{"float64", float64(3.25), "3.25"},
		{"int", 42, "42"},
		{"numeric string", "99.99", "99.99"},
		{"json number", json.Number("7.125"), "7.125"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Expand(domain.FieldNumber, tc.raw)
			require.NoError(t, err)
			require.NotNil(t, v.Number)
			assert.Equal(t, tc.want, v.Number.String())
		})
	}
}

func TestExpandDateAcceptsBothLayouts(t *testing.T) {
	v, err := Expand(domain.FieldDate, "2025-06-15")
	require.NoError(t, err)
	require.NotNil(t, v.Date)
	assert.Equal(t, 15, v.Date.Day())

	v, err = Expand(domain.FieldDate, "2025-06-15T10:30:00Z")
	require.NoError(t, err)
	require.NotNil(t, v.Date)
	assert.Equal(t, 10, v.Date.Hour())
}

func TestExpandJSON(t *testing.T) {
	v, err := Expand(domain.FieldJSON, json.RawMessage(`{"tier": "gold"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"tier": "gold"}`, string(v.JSON))

	// arbitrary values are marshalled
	v, err = Expand(domain.FieldJSON, map[string]any{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(v.JSON))
}

func TestExpandTypeMismatch(t *testing.T) {
	_, err := Expand(domain.FieldNumber, "not a number")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Expand(domain.FieldBoolean, "true")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Expand(domain.FieldDate, "junk")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Expand(domain.FieldJSON, json.RawMessage(`{broken`))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Expand(domain.FieldText, nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestExpandUnknownFieldType(t *testing.T) {
	_, err := Expand(domain.FieldType("blob"), "x")
	assert.Error(t, err)
}

func TestFlattenRoundTrip(t *testing.T) {
	credit := decimal.RequireFromString("5000")
	active := true
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	fields := []domain.DynamicField{
		{FieldName: "credit_limit", Value: domain.FieldValue{Type: domain.FieldNumber, Number: &credit}},
		{FieldName: "vip", Value: domain.FieldValue{Type: domain.FieldBoolean, Boolean: &active}},
		{FieldName: "member_since", Value: domain.FieldValue{Type: domain.FieldDate, Date: &since}},
	}

	flat := Flatten(fields)
	assert.Equal(t, credit, flat["credit_limit"])
	assert.Equal(t, true, flat["vip"])
	assert.Equal(t, since, flat["member_since"])
}

func TestValueEmptySlotIsNil(t *testing.T) {
	assert.Nil(t, Value(domain.FieldValue{Type: domain.FieldText}))
}
