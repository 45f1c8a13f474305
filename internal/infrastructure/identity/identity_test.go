package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-chat/internal/utils/platformerrors"
)

func TestSessionVerifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/verify", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var body verifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		switch body.Token {
		case "good":
			_, _ = w.Write([]byte(`{"user_id":"idp_123","email":"ada@example.com","name":"Ada"}`))
		case "gone":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"session not found"}`))
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message":"upstream down"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid token"}`))
		}
	}))
	defer server.Close()

	v := NewSessionVerifier(SessionConfig{BaseURL: server.URL + "/", SecretKey: "sk_test", Timeout: 2 * time.Second})
	ctx := context.Background()

	identity, err := v.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "idp_123", identity.ID)
	assert.Equal(t, "ada@example.com", identity.Email)

	_, err = v.Verify(ctx, "bad")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))

	_, err = v.Verify(ctx, "gone")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))

	_, err = v.Verify(ctx, "broken")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))

	_, err = v.Verify(ctx, "  ")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func jwksServer(t *testing.T, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	doc := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "test-key",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"
	raw, err := token.SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestJWTVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	server := jwksServer(t, key)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v, err := NewJWTVerifier(ctx, JWTConfig{JWKSURL: server.URL, Issuer: "https://idp.example.com", Audience: "sovereign-chat"}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, v.Ready())

	exp := time.Now().Add(time.Hour).Unix()
	valid := sign(t, key, jwt.MapClaims{
		"sub":                "idp_123",
		"iss":                "https://idp.example.com",
		"aud":                "sovereign-chat",
		"exp":                exp,
		"email":              "ada@example.com",
		"preferred_username": "ada",
	})
	identity, err := v.Verify(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, "idp_123", identity.ID)
	assert.Equal(t, "ada", identity.Name)

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{name: "wrong issuer", claims: jwt.MapClaims{"sub": "x", "iss": "https://evil.example.com", "aud": "sovereign-chat", "exp": exp}},
		{name: "wrong audience", claims: jwt.MapClaims{"sub": "x", "iss": "https://idp.example.com", "aud": "other", "exp": exp}},
		{name: "expired", claims: jwt.MapClaims{"sub": "x", "iss": "https://idp.example.com", "aud": "sovereign-chat", "exp": time.Now().Add(-time.Hour).Unix()}},
		{name: "no subject", claims: jwt.MapClaims{"iss": "https://idp.example.com", "aud": "sovereign-chat", "exp": exp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(ctx, sign(t, key, tt.claims))
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
		})
	}

	_, err = v.Verify(ctx, "not-a-jwt")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}
