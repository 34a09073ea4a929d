package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	. "github.com/trezcool/avaliacao/apps/api/echo"
	"github.com/trezcool/avaliacao/tests"
)

func Test_home(t *testing.T) {
	server, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("home() code = %v; want %v", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "Welcome to the Avaliacao API!" {
		t.Errorf("home() body = %q", got)
	}
}

func Test_authApi_login(t *testing.T) {
	server, _ := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Ana", "ana@test.com", pwd, true)
	testutil.CreateUser(t, usrRepo, "Bob", "bob@test.com", pwd, false)

	path := "/v1/auth/login"
	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{
			name:     "empty credentials",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"this field is required","password":"this field is required"}`),
		},
		{
			name:     "unknown email",
			body:     []byte(`{"email":"eve@test.com","password":"Pa$$w0rd!"}`),
			wantCode: http.StatusBadRequest,
			wantData: authFailed,
		},
		{
			name:     "wrong password",
			body:     []byte(`{"email":"ana@test.com","password":"nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: authFailed,
		},
		{
			name:     "inactive user",
			body:     []byte(`{"email":"bob@test.com","password":"Pa$$w0rd!"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "email is cleaned",
			body:     []byte(`{"email":"  ANA@test.com ","password":"Pa$$w0rd!"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, path, tt.body)
			server.ServeHTTP(rec, req)

			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("login() code = %v; want %v (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			claims := parseToken(t, rec.Body.Bytes())
			if claims.Subject != usr.ID || claims.Email != usr.Email {
				t.Errorf("login() claims = %+v; want user %v", claims, usr.ID)
			}
		})
	}
}

func Test_authApi_refreshToken(t *testing.T) {
	server, _ := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Ana", "ana@test.com", pwd, true)
	inactive := testutil.CreateUser(t, usrRepo, "Bob", "bob@test.com", pwd, false)
	stale := time.Now().Add(-conf.Server.JWTRefreshExpirationDelta - time.Hour).Unix()

	path := "/v1/auth/token-refresh"

	tests := []httpTest{
		{
			name:     "missing token",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "invalid token",
			token:    "not-a-jwt",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errInvalidToken),
		},
		{
			name:     "inactive user",
			token:    getToken(t, inactive),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "refresh window expired",
			token:    getToken(t, usr, stale),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{
			name:     "ok",
			token:    getToken(t, usr),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, tt.token)
			server.ServeHTTP(rec, req)

			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("refreshToken() code = %v; want %v (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if claims := parseToken(t, rec.Body.Bytes()); claims.Subject != usr.ID {
				t.Errorf("refreshToken() subject = %v; want %v", claims.Subject, usr.ID)
			}
		})
	}
}

func parseToken(t *testing.T, body []byte) *Claims {
	t.Helper()

	var resp TokenResponse
	unmarshal(t, body, &resp)

	claims := new(Claims)
	_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(conf.SecretKey), nil
	})
	if err != nil {
		t.Fatalf("parseToken(): %v", err)
	}
	return claims
}
