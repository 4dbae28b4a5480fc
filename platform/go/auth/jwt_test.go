package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	key := []byte("test-signing-key")
	issuer, err := NewTokenIssuer(key, time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenVerifier(key)
	require.NoError(t, err)

	tenantID := uuid.New()
	token, err := issuer.Issue(tenantID, "tenant-alpha", time.Now().UTC())
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, tenantID, claims.TenantID)
	require.Equal(t, "tenant-alpha", claims.TenantSlug)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	key := []byte("test-signing-key")
	issuer, err := NewTokenIssuer(key, time.Minute)
	require.NoError(t, err)
	verifier, err := NewTokenVerifier(key)
	require.NoError(t, err)

	token, err := issuer.Issue(uuid.New(), "tenant-alpha", time.Now().UTC().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer([]byte("key-one"), time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenVerifier([]byte("key-two"))
	require.NoError(t, err)

	token, err := issuer.Issue(uuid.New(), "tenant-alpha", time.Now().UTC())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestExtractJWTToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		found  bool
	}{
		{name: "missing header", header: "", want: "", found: false},
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi", found: true},
		{name: "lowercase scheme", header: "bearer abc", want: "abc", found: true},
		{name: "other scheme", header: "Basic abc", want: "", found: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			got, found := ExtractJWTToken(r)
			require.Equal(t, tc.found, found)
			require.Equal(t, tc.want, got)
		})
	}
}
