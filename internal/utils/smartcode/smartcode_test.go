package smartcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herafoundry/hera_data_engine/internal/apperrors"
)

func TestParseValidCode(t *testing.T) {
	parsed, err := Parse("HERA.CRM.CUST.ENTITY.PROFILE.v1")
	require.NoError(t, err)
	assert.Equal(t, "HERA.CRM.CUST.ENTITY.PROFILE.v1", parsed.Raw)
	assert.Equal(t, "CRM", parsed.Industry)
	assert.Equal(t, "CUST", parsed.Module)
	assert.Equal(t, "ENTITY", parsed.Function)
	assert.Equal(t, "PROFILE", parsed.DocType)
	assert.Equal(t, 1, parsed.Version)
	assert.Len(t, parsed.Segments, 5)
}

func TestParseThreeSegmentCode(t *testing.T) {
	parsed, err := Parse("HERA.CRM.CUST.ENTITY.v1")
	require.NoError(t, err)
	assert.Equal(t, "CRM", parsed.Industry)
	assert.Equal(t, "CUST", parsed.Module)
	assert.Equal(t, "ENTITY", parsed.Function)
	assert.Empty(t, parsed.DocType)
	assert.Equal(t, 1, parsed.Version)
	assert.Len(t, parsed.Segments, 3)
}

func TestParseNormalizesCase(t *testing.T) {
	parsed, err := Parse("hera.fin.gl.txn.je.v2")
	require.NoError(t, err)
	assert.Equal(t, "HERA.FIN.GL.TXN.JE.v2", parsed.Raw)
	assert.Equal(t, 2, parsed.Version)
}

func TestParseRejectsMalformedCodes(t *testing.T) {
	cases := []string{
		"",
		"HERA.FIN.v1",                  // too few segments
		"HERA.FIN.GL.TXN.JE",           // missing version
		"FIN.GL.TXN.JE.ENTITY.v1",      // wrong root
		"HERA.FIN.GL.TXN.JE.v",         // empty version
		"HERA.FIN.GL.TXN.JE.version1",  // bad version suffix
		"HERA..GL.TXN.JE.ENTITY.v1",    // empty segment
		"HERA.FIN-X.GL.TXN.JE.v1",      // illegal character
	}
	for _, code := range cases {
		_, err := Parse(code)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "code %q should be rejected", code)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("HERA.SALON.SVC.TXN.SALE.v1"))
	assert.False(t, IsValid("not-a-smart-code"))
}

func TestPrefix(t *testing.T) {
	parsed, err := Parse("HERA.FIN.GL.TXN.JE.v1")
	require.NoError(t, err)
	assert.Equal(t, "HERA.FIN", parsed.Prefix(1))
	assert.Equal(t, "HERA.FIN.GL", parsed.Prefix(2))
	// n beyond the segment count clamps to the whole family
	assert.Equal(t, "HERA.FIN.GL.TXN.JE", parsed.Prefix(10))
}

func TestAlignMatchingDiscriminator(t *testing.T) {
	parsed, err := Parse("HERA.CRM.CUST.ENTITY.PROFILE.v1")
	require.NoError(t, err)
	assert.Empty(t, Align(parsed, "customer"))
}

func TestAlignMissingDiscriminator(t *testing.T) {
	parsed, err := Parse("HERA.FIN.GL.TXN.JE.v1")
	require.NoError(t, err)
	warnings := Align(parsed, "customer")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "customer")
}

func TestAlignUnknownTypeIsSilent(t *testing.T) {
	parsed, err := Parse("HERA.MFG.WIDGET.ENTITY.SPEC.v1")
	require.NoError(t, err)
	assert.Empty(t, Align(parsed, "widget_blueprint"))
}
