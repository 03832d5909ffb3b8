package secretbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	box, err := New("credential-key")
	require.NoError(t, err)

	sealed, err := box.Seal("ya29.a0AfH6SM")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "ya29")

	again, err := box.Seal("ya29.a0AfH6SM")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce должен быть случайным")

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ya29.a0AfH6SM", plain)
}

func TestOpenWithOtherKey(t *testing.T) {
	a, _ := New("key-a")
	b, _ := New("key-b")

	sealed, err := a.Seal("token")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)
	_, err = b.Open("%%%")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
