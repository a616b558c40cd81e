package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenCodecConfig(t *testing.T) {
	_, err := NewTokenCodec(Config{AccessTTL: time.Hour, RefreshTTL: time.Hour})
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewTokenCodec(Config{Secret: "s", AccessTTL: 0, RefreshTTL: time.Hour})
	assert.ErrorIs(t, err, ErrInvalidTTL)

	_, err = NewTokenCodec(Config{Secret: "s", AccessTTL: time.Hour, RefreshTTL: -time.Second})
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestIssueDecodeRoundTrip(t *testing.T) {
	c := newTestCodec(t, testSecret)
	for _, sub := range []string{"1", "42", "9223372036854775807"} {
		raw, err := c.Issue(sub, time.Minute)
		require.NoError(t, err)

		claims, err := c.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, sub, claims.Subject)
		assert.Equal(t, t0.Unix(), claims.IssuedAt)
		assert.Equal(t, t0.Add(time.Minute).Unix(), claims.ExpiresAt)
	}
}

func TestDecodeExpiryBoundary(t *testing.T) {
	c := newTestCodec(t, testSecret)
	ttl := time.Hour
	raw, err := c.Issue("7", ttl)
	require.NoError(t, err)

	_, err = c.WithClock(fixedClock(t0.Add(ttl - time.Second))).Decode(raw)
	assert.NoError(t, err)

	_, err = c.WithClock(fixedClock(t0.Add(ttl + time.Second))).Decode(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, KindTokenExpired, KindOf(err))
}

func TestDecodeWrongSecret(t *testing.T) {
	raw, err := newTestCodec(t, "other-secret").Issue("7", time.Hour)
	require.NoError(t, err)

	_, err = newTestCodec(t, testSecret).Decode(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeWrongSecretAndExpired(t *testing.T) {
	raw, err := newTestCodec(t, "other-secret").Issue("7", time.Minute)
	require.NoError(t, err)

	_, err = newTestCodec(t, testSecret).WithClock(fixedClock(t0.Add(time.Hour))).Decode(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeMalformed(t *testing.T) {
	c := newTestCodec(t, testSecret)
	for _, raw := range []string{"", "abc", "a.b.c", "not.a.token.at.all"} {
		_, err := c.Decode(raw)
		assert.ErrorIs(t, err, ErrTokenInvalid, raw)
	}
}

func TestDecodeRejectsOtherAlgorithms(t *testing.T) {
	c := newTestCodec(t, testSecret)
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		IssuedAt:  jwt.NewNumericDate(t0),
		ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Decode(none)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = c.Decode(hs512)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeRequiresSubjectAndExpiry(t *testing.T) {
	c := newTestCodec(t, testSecret)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = c.Decode(noSub)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "7",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = c.Decode(noExp)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssuePair(t *testing.T) {
	c := newTestCodec(t, testSecret)
	pair, err := c.IssuePair(42)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	access, err := c.Decode(pair.Access)
	require.NoError(t, err)
	refresh, err := c.Decode(pair.Refresh)
	require.NoError(t, err)

	assert.Equal(t, "42", access.Subject)
	assert.Equal(t, "42", refresh.Subject)
	assert.Equal(t, t0.Add(time.Hour).Unix(), access.ExpiresAt)
	assert.Equal(t, t0.Add(7*24*time.Hour).Unix(), refresh.ExpiresAt)

	id, err := access.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokenWireFormat(t *testing.T) {
	raw, err := newTestCodec(t, testSecret).Issue("42", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)

	var header map[string]any
	decodeSegment(t, parts[0], &header)
	assert.Equal(t, "HS256", header["alg"])

	var payload map[string]any
	decodeSegment(t, parts[1], &payload)
	assert.Len(t, payload, 3)
	assert.Equal(t, "42", payload["sub"])
	assert.EqualValues(t, t0.Unix(), payload["iat"])
	assert.EqualValues(t, t0.Add(time.Hour).Unix(), payload["exp"])
}

func decodeSegment(t *testing.T, seg string, dst any) {
	t.Helper()
	b, err := base64.RawURLEncoding.DecodeString(seg)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, dst))
}
