package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/testutil"
)

func TestRegister(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "register dom",
			body: map[string]string{
				"email":       "dom@example.com",
				"password":    "securepassword",
				"displayName": "Morgan",
				"role":        "DOM",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: map[string]string{
				"email":       "dom@example.com",
				"password":    "securepassword",
				"displayName": "Other",
				"role":        "SUB",
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "EMAIL_EXISTS",
		},
		{
			name: "duplicate email different case",
			body: map[string]string{
				"email":       "DOM@Example.com",
				"password":    "securepassword",
				"displayName": "Other",
				"role":        "SUB",
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "EMAIL_EXISTS",
		},
		{
			name: "invalid role",
			body: map[string]string{
				"email":       "weird@example.com",
				"password":    "securepassword",
				"displayName": "Weird",
				"role":        "OVERLORD",
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "admin role is not self-service",
			body: map[string]string{
				"email":       "admin@example.com",
				"password":    "securepassword",
				"displayName": "Admin",
				"role":        "ADMIN",
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "missing fields",
			body: map[string]string{
				"email": "incomplete@example.com",
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/auth/register"), tt.body, "")
			defer resp.Body.Close()

			if tt.expectedCode != "" {
				testutil.AssertErrorCode(t, resp, tt.expectedStatus, tt.expectedCode)
				return
			}

			var auth struct {
				User struct {
					Email string `json:"email"`
					Role  string `json:"role"`
				} `json:"user"`
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			}
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			testutil.AssertJSONResponse(t, resp, &auth)
			assert.Equal(t, tt.body["email"], auth.User.Email)
			assert.Equal(t, tt.body["role"], auth.User.Role)
			assert.NotEmpty(t, auth.AccessToken)
			assert.NotEmpty(t, auth.RefreshToken)
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, password := testutil.NewUserBuilder().WithRole(domain.RoleSub).Build(t, ts.DB.DB)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/auth/login"), map[string]string{
		"email":    user.Email,
		"password": password,
	}, "")
	var auth struct {
		AccessToken string `json:"accessToken"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &auth)
	resp.Body.Close()
	require.NotEmpty(t, auth.AccessToken)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/auth/login"), map[string]string{
		"email":    user.Email,
		"password": "wrongpassword",
	}, "")
	testutil.AssertErrorCode(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/auth/me"), nil, auth.AccessToken)
	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &me)
	resp.Body.Close()
	assert.Equal(t, user.ID.String(), me.ID)
	assert.Equal(t, user.Email, me.Email)
	assert.Equal(t, string(domain.RoleSub), me.Role)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/auth/me"), nil, "not-a-token")
	testutil.AssertErrorCode(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
	resp.Body.Close()
}

func TestLoginInactiveUser(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, password := testutil.NewUserBuilder().
		WithStatus(domain.UserStatusInactive).
		Build(t, ts.DB.DB)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/auth/login"), map[string]string{
		"email":    user.Email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	testutil.AssertErrorCode(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
}
