package echoapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestUserRegister(t *testing.T) {
	env := newTestEnv(t)

	tests := []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/v1/users/register",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"name":             "this field is required",
				"email":            "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name:     "password mismatch",
			method:   http.MethodPost,
			path:     "/v1/users/register",
			body:     []byte(`{"name":"T","email":"t@test.test","password":"Str0ngPwd!","password_confirm":"nope-nope"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "ok",
			method:   http.MethodPost,
			path:     "/v1/users/register",
			body:     []byte(`{"name":"T","email":"t@test.test","password":"Str0ngPwd!","password_confirm":"Str0ngPwd!"}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt)
			env.checkResponse(t, tt, rec)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/users/register",
			body:     []byte(`{"name":"T2","email":"T@Test.test","password":"Str0ngPwd!","password_confirm":"Str0ngPwd!"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "a user with this email already exists"}),
		}
		rec := env.do(t, tt)
		env.checkResponse(t, tt, rec)
	})
}

func TestUserLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "T", "t@test.test", "Str0ngPwd!")

	tests := []httpTest{
		{
			name:     "unknown account",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"email":"nobody@test.test","password":"Str0ngPwd!"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"email":"t@test.test","password":"wr0ng-pwd!"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "ok",
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"email":"t@test.test","password":"Str0ngPwd!"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt)
			env.checkResponse(t, tt, rec)

			if tt.name == "ok" {
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
					t.Errorf("login response = %s", rec.Body.String())
				}
			}
		})
	}
}

func TestUserMe(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "T", "t@test.test", "Str0ngPwd!")
	token := env.getToken(t, usr)

	tests := []httpTest{
		{
			name:     "auth required",
			path:     "/v1/users/me",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "ok",
			path:     "/v1/users/me",
			token:    token,
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt)
			env.checkResponse(t, tt, rec)

			if tt.name == "ok" {
				body := rec.Body.String()
				if !strings.Contains(body, usr.ID) || strings.Contains(body, "password") {
					t.Errorf("me response = %s", body)
				}
			}
		})
	}
}

func TestUserQuery(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "T", "t@test.test", "Str0ngPwd!")
	admin := env.createUser(t, "Admin", env.conf.AdminEmail, "Str0ngPwd!")

	tests := []httpTest{
		{
			name:     "auth required",
			path:     "/v1/users",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "admin required",
			path:     "/v1/users",
			token:    env.getToken(t, usr),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "ok",
			path:     "/v1/users",
			token:    env.getToken(t, admin),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt)
			env.checkResponse(t, tt, rec)

			if tt.name == "ok" {
				var users []map[string]interface{}
				if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil || len(users) != 2 {
					t.Errorf("query response = %s", rec.Body.String())
				}
			}
		})
	}
}

func TestUserTokenRefresh(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "T", "t@test.test", "Str0ngPwd!")

	tt := httpTest{
		method:   http.MethodPost,
		path:     "/v1/users/token-refresh",
		token:    env.getToken(t, usr),
		wantCode: http.StatusOK,
	}
	rec := env.do(t, tt)
	env.checkResponse(t, tt, rec)

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Errorf("refresh response = %s", rec.Body.String())
	}
}

func TestUserPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "T", "t@test.test", "Str0ngPwd!")

	// the response never reveals whether the account exists
	for _, email := range []string{"t@test.test", "nobody@test.test"} {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/users/password-reset",
			body:     marshallObj(t, PasswordResetRequest{Email: email}),
			wantCode: http.StatusOK,
		}
		rec := env.do(t, tt)
		env.checkResponse(t, tt, rec)
	}

	// but only the real account got a reset email
	msgs := env.mailSvc.SentMessages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d reset emails, want 1", len(msgs))
	}
	if to := msgs[0].To[0].Address; to != "t@test.test" {
		t.Errorf("reset email sent to %s", to)
	}
}
