package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/handler"
	"github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/repo"
	"github.com/ribeiromendes5014-design/netfliz/domains/tenants/be/service"
	platformauth "github.com/ribeiromendes5014-design/netfliz/platform/go/auth"
)

const signingKey = "test-signing-key"

type fixture struct {
	handler   *handler.Handler
	verifier  *platformauth.TokenVerifier
	slug      string
	accessKey string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	svc := service.New(repo.NewMemoryRepository())
	tenant, key, err := svc.Create(context.Background(), service.CreateInput{Name: "Acme Streams"})
	require.NoError(t, err)

	issuer, err := platformauth.NewTokenIssuer([]byte(signingKey), time.Hour)
	require.NoError(t, err)
	verifier, err := platformauth.NewTokenVerifier([]byte(signingKey))
	require.NoError(t, err)

	return fixture{
		handler:   handler.New(svc, issuer, zap.NewNop()),
		verifier:  verifier,
		slug:      tenant.Slug,
		accessKey: key,
	}
}

func (f fixture) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.CreateSession(rec, req)
	return rec
}

func TestCreateSessionIssuesToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.post(t, `{"slug": "`+f.slug+`", "accessKey": "`+f.accessKey+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token      string `json:"token"`
		TenantSlug string `json:"tenantSlug"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "acme-streams", resp.TenantSlug)

	claims, err := f.verifier.Verify(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "acme-streams", claims.TenantSlug)
}

func TestCreateSessionRejectsBadKey(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.post(t, `{"slug": "`+f.slug+`", "accessKey": "wrong"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestCreateSessionUnknownTenantSameAnswer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	badKey := f.post(t, `{"slug": "`+f.slug+`", "accessKey": "wrong"}`)
	unknown := f.post(t, `{"slug": "no-such-tenant", "accessKey": "wrong"}`)

	require.Equal(t, http.StatusForbidden, badKey.Code)
	require.Equal(t, http.StatusForbidden, unknown.Code)
	require.JSONEq(t, badKey.Body.String(), unknown.Body.String())
}

func TestCreateSessionValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	cases := []struct {
		name string
		body string
	}{
		{name: "missing fields", body: `{}`},
		{name: "malformed json", body: `{slug}`},
		{name: "empty access key", body: `{"slug": "acme-streams", "accessKey": ""}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.post(t, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
