package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDocumentNo(t *testing.T) {
	assert.Equal(t, "MD-000001", FormatDocumentNo(1))
	assert.Equal(t, "MD-000042", FormatDocumentNo(42))
	assert.Equal(t, "MD-1234567", FormatDocumentNo(1234567))
}

func TestParseDocumentNo(t *testing.T) {
	seq, ok := ParseDocumentNo("MD-000017")
	require.True(t, ok)
	assert.Equal(t, int64(17), seq)

	_, ok = ParseDocumentNo("MD-legacy")
	assert.False(t, ok)

	_, ok = ParseDocumentNo("")
	assert.False(t, ok)
}

func TestMaxDocumentSeq(t *testing.T) {
	max, invalid := MaxDocumentSeq(nil)
	assert.Equal(t, int64(0), max)
	assert.Empty(t, invalid)

	max, invalid = MaxDocumentSeq([]string{"MD-000003", "MD-bad", "MD-000011", "MD-000002"})
	assert.Equal(t, int64(11), max)
	assert.Equal(t, []string{"MD-bad"}, invalid)
}

func TestNormalizeSubDocumentNo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "single digit", input: "7", want: "SUB-007"},
		{name: "already padded digits", input: "012", want: "SUB-012"},
		{name: "mixed characters", input: "no. 4a", want: "SUB-004"},
		{name: "longer than three digits", input: "1234", want: "SUB-1234"},
		{name: "canonical prefix kept verbatim", input: "SUB-5", want: "SUB-5"},
		{name: "canonical form", input: "SUB-010", want: "SUB-010"},
		{name: "lower case prefix is not canonical", input: "sub-9", want: "SUB-009"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSubDocumentNo(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := NormalizeSubDocumentNo(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "normalization must be idempotent")
		})
	}
}

func TestNormalizeSubDocumentNo_Rejects(t *testing.T) {
	_, err := NormalizeSubDocumentNo("")
	assert.ErrorIs(t, err, ErrSubDocumentNoRequired)

	_, err = NormalizeSubDocumentNo("   ")
	assert.ErrorIs(t, err, ErrSubDocumentNoRequired)

	_, err = NormalizeSubDocumentNo("abc")
	assert.ErrorIs(t, err, ErrInvalidSubDocumentNo)
}

func TestNextSubDocumentNo(t *testing.T) {
	assert.Equal(t, "SUB-001", NextSubDocumentNo(nil))
	assert.Equal(t, "SUB-008", NextSubDocumentNo([]string{"SUB-001", "SUB-007", "SUB-003"}))
	assert.Equal(t, "SUB-1001", NextSubDocumentNo([]string{"SUB-1000"}))
	assert.Equal(t, "SUB-003", NextSubDocumentNo([]string{"SUB-abc", "SUB-002"}))
}
