package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewHasher_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewHasher(nil)
	require.ErrorIs(t, err, ErrEmptySecret)

	_, err = NewHasher([]byte{})
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestHasher_Deterministic(t *testing.T) {
	t.Parallel()

	h, err := NewHasher([]byte("server-secret"))
	require.NoError(t, err)

	a := h.Hash("some-token-value")
	b := h.Hash("some-token-value")
	require.Equal(t, a, b)
	require.NotEqual(t, "some-token-value", a)
}

func TestHasher_SecretChangesDigest(t *testing.T) {
	t.Parallel()

	h1, err := NewHasher([]byte("secret-one"))
	require.NoError(t, err)
	h2, err := NewHasher([]byte("secret-two"))
	require.NoError(t, err)

	require.NotEqual(t, h1.Hash("token"), h2.Hash("token"))
}

func TestHasher_Equal(t *testing.T) {
	t.Parallel()

	h, err := NewHasher([]byte("server-secret"))
	require.NoError(t, err)

	digest := h.Hash("token")
	require.True(t, h.Equal(digest, h.Hash("token")))
	require.False(t, h.Equal(digest, h.Hash("other")))
}
