package seal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestSealRoundTrip(t *testing.T) {
	sealer, err := New(testKey())
	require.NoError(t, err)

	plaintext := []byte(`{"currently_monthly_income":"2000.00"}`)
	sealed, err := sealer.Seal(plaintext)
	require.NoError(t, err)
	require.False(t, bytes.Contains(sealed, []byte("2000.00")), "ciphertext leaks plaintext")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestSealStringRoundTrip(t *testing.T) {
	sealer, err := New(testKey())
	require.NoError(t, err)

	sealed, err := sealer.SealString("123-45-6789")
	require.NoError(t, err)
	require.NotContains(t, sealed, "123-45-6789")

	opened, err := sealer.OpenString(sealed)
	require.NoError(t, err)
	require.Equal(t, "123-45-6789", opened)
}

func TestSealUniqueNonces(t *testing.T) {
	sealer, err := New(testKey())
	require.NoError(t, err)

	a, err := sealer.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := sealer.Seal([]byte("same"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestNewRejectsBadKey(t *testing.T) {
	_, err := New([]byte("short"))
	require.Error(t, err)
}

func TestOpenRejectsTampering(t *testing.T) {
	sealer, err := New(testKey())
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("payload"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = sealer.Open(sealed)
	require.Error(t, err)
}
