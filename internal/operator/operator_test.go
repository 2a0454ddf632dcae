package operator

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHash(t *testing.T, pin string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestValidateNameAndPIN(t *testing.T) {
	ctx := context.Background()
	dir := StaticDirectory{Name: DefaultName, PINHash: testHash(t, "4821")}

	acct, err := ValidateNameAndPIN(ctx, dir, "", "4821")
	require.NoError(t, err)
	assert.Equal(t, DefaultName, acct.Name)

	_, err = ValidateNameAndPIN(ctx, dir, "operator", "0000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = ValidateNameAndPIN(ctx, dir, "coach", "4821")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStaticDirectoryWithoutHash(t *testing.T) {
	_, err := StaticDirectory{Name: DefaultName}.Lookup(context.Background(), DefaultName)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHashPIN(t *testing.T) {
	_, err := HashPIN("12")
	assert.Error(t, err)

	h, err := HashPIN("123456")
	require.NoError(t, err)
	assert.True(t, VerifyPIN(h, "123456"))
	assert.False(t, VerifyPIN(h, "654321"))
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()
	tok, exp, err := IssueToken("secret", "coach", time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), exp.Unix())

	name, err := ParseToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "coach", name)

	_, err = ParseToken("other", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejects(t *testing.T) {
	expired, _, err := IssueToken("secret", "coach", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "coach",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseToken("secret", noRole)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "coach",
		"role": "operator",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken("secret", none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("secret", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDirectoriesFallThrough(t *testing.T) {
	ctx := context.Background()
	dirs := Directories{
		StaticDirectory{Name: "coach", PINHash: testHash(t, "1111")},
		StaticDirectory{Name: DefaultName, PINHash: testHash(t, "2222")},
	}

	acct, err := dirs.Lookup(ctx, DefaultName)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, acct.Name)

	_, err = ValidateNameAndPIN(ctx, dirs, "coach", "1111")
	assert.NoError(t, err)

	_, err = dirs.Lookup(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
