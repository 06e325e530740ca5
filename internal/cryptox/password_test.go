package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast; production uses DefaultParams.
var testParams = Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashPassword_Format(t *testing.T) {
	h, err := HashPassword("pw1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=65536,t=1,p=4$"), h)
	assert.Len(t, strings.Split(h, "$"), 6)
	assert.NotContains(t, h, "pw1")
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPasswordWithParams("same", testParams)
	require.NoError(t, err)
	b, err := HashPasswordWithParams("same", testParams)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two hashes of the same password must differ by salt")
}

func TestVerifyPassword(t *testing.T) {
	h, err := HashPasswordWithParams("correct horse", testParams)
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse", h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong horse", h)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyPassword("", h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_DefaultParamsRoundTrip(t *testing.T) {
	h, err := HashPassword("student123")
	require.NoError(t, err)

	ok, err := VerifyPassword("student123", h)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA",
	}
	for _, c := range cases {
		ok, err := VerifyPassword("pw", c)
		assert.ErrorIs(t, err, ErrMalformedHash, "input %q", c)
		assert.False(t, ok)
	}
}
