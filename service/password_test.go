package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testHasher keeps argon2 cheap enough for unit tests.
func testHasher() *PasswordHasher {
	return &PasswordHasher{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := testHasher()
	password := "mySecretPassword123"

	hashed, err := h.Hash(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hashed)
	assert.True(t, strings.HasPrefix(hashed, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, h.Verify(password, hashed))
	assert.False(t, h.Verify("notMyPassword", hashed))

	again, err := h.Hash(password)
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "each hash uses a fresh salt")
}

func TestPasswordHasher_VerifyUsesEncodedParameters(t *testing.T) {
	hashed, err := testHasher().Hash("Secret123")
	require.NoError(t, err)

	// A hasher with different defaults still verifies older hashes.
	assert.True(t, NewPasswordHasher().Verify("Secret123", hashed))
}

func TestPasswordHasher_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("Secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	h := testHasher()
	assert.True(t, h.Verify("Secret123", string(legacy)))
	assert.False(t, h.Verify("Secret124", string(legacy)))
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := testHasher()
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	} {
		assert.False(t, h.Verify("Secret123", encoded), encoded)
	}
}
