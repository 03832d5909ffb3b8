package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer("cl")
	require.Equal(t, "CL", n.Region())

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "national number uses default region", raw: "2 2123 4567", want: "+56221234567"},
		{name: "international with punctuation", raw: "+56 (2) 2123-4567", want: "+56221234567"},
		{name: "00 prefix", raw: "0034 600 111 222", want: "+34600111222"},
		{name: "foreign number keeps its country", raw: "+1 650-253-0000", want: "+16502530000"},
		{name: "blank", raw: "   ", want: ""},
		{name: "too short", raw: "12", wantErr: true},
		{name: "letters", raw: "call me", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizer_RegionMatters(t *testing.T) {
	us := NewNormalizer("US")
	got, err := us.Normalize("650 253 0000")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	assert.Equal(t, DefaultRegion, NewNormalizer("").Region())
}

func TestNormalizer_ValidAndFormat(t *testing.T) {
	n := NewNormalizer(DefaultRegion)

	assert.True(t, n.Valid("+56 2 2123 4567"))
	assert.False(t, n.Valid(""))
	assert.False(t, n.Valid("+56 1234"))

	assert.Equal(t, "+56221234567", n.Format(" 22 123 4567 "))
	assert.Equal(t, "12", n.Format(" 12 "))
}
