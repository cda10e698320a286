package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-qtype/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("k")
	tok, err := a.IssueJWT("engine-1", "engine")
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "engine-1", c.Sub)
	require.Equal(t, "engine", c.Role)
	require.Equal(t, "mindengage-qtype", c.Issuer)
}

func TestParse_Rejects(t *testing.T) {
	a := NewAuthService("k")

	expired := &AuthService{hmac: []byte("k"), ttl: -time.Minute}
	tok, err := expired.IssueJWT("x", "engine")
	require.NoError(t, err)
	_, err = a.Parse(tok)
	require.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Sub: "x", Role: "admin"})
	s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Parse(s)
	require.Error(t, err)
}

func TestAdminCheck(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	ad := Admin{User: "root", PassHash: string(hash)}
	require.True(t, ad.check("root", "pw"))
	require.False(t, ad.check("root", "PW"))
	require.False(t, ad.check("other", "pw"))
	require.False(t, Admin{}.check("", ""))
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	h := LoginHandler(NewAuthService("k"), Admin{User: "root", PassHash: string(hash)})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("POST", "/auth/login", strings.NewReader("{")))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"root","password":"pw"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "access_token")
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("k")
	var sub, role string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub = SubjectFromContext(r.Context())
		role = rbac.RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := a.IssueJWT("engine-1", "engine")
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "engine-1", sub)
	require.Equal(t, "engine", role)
}

func TestActor(t *testing.T) {
	ctx := httptest.NewRequest("GET", "/", nil).Context()
	require.Equal(t, "anonymous", Actor(ctx))
	require.Equal(t, "ops", Actor(WithSubject(ctx, "ops")))
}
