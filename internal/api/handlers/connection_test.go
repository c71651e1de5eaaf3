package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/service"
	"github.com/underneath-app/underneath/internal/testutil"
)

// loginAdmin creates an admin directly in the database (registration does
// not hand out the ADMIN role) and logs in through the API.
func loginAdmin(t *testing.T, ts *testutil.TestServer) string {
	t.Helper()

	admin, password := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, ts.DB.DB)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/auth/login"), map[string]string{
		"email":    admin.Email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	var auth struct {
		AccessToken string `json:"accessToken"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &auth)
	return auth.AccessToken
}

func TestMyConnectionAndAvailability(t *testing.T) {
	ts := testutil.NewTestServer(t)

	dom, domToken := testutil.NewUserBuilder().WithRole(domain.RoleDom).BuildAndAuthenticate(t, ts)
	sub, subToken := testutil.NewUserBuilder().WithRole(domain.RoleSub).BuildAndAuthenticate(t, ts)

	checkAvailability := func(token string, canCreate bool) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/connections/availability"), nil, token)
		defer resp.Body.Close()
		var availability struct {
			CanCreateConnection bool `json:"canCreateConnection"`
			HasActiveConnection bool `json:"hasActiveConnection"`
		}
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertJSONResponse(t, resp, &availability)
		assert.Equal(t, canCreate, availability.CanCreateConnection)
		assert.Equal(t, !canCreate, availability.HasActiveConnection)
	}

	checkAvailability(domToken, true)

	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/connections/my-connection"), nil, domToken)
	var myConnection struct {
		HasConnection bool `json:"hasConnection"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &myConnection)
	resp.Body.Close()
	assert.False(t, myConnection.HasConnection)

	connection := testutil.NewConnectionBuilder(dom, sub).Build(t, ts.DB.DB)

	checkAvailability(domToken, false)
	checkAvailability(subToken, false)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/connections/my-connection"), nil, subToken)
	var withConnection struct {
		HasConnection bool `json:"hasConnection"`
		Connection    struct {
			ID  string `json:"id"`
			Dom struct {
				DisplayName string `json:"displayName"`
			} `json:"dom"`
		} `json:"connection"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &withConnection)
	resp.Body.Close()
	assert.True(t, withConnection.HasConnection)
	assert.Equal(t, connection.ID.String(), withConnection.Connection.ID)
	assert.Equal(t, dom.DisplayName, withConnection.Connection.Dom.DisplayName)
}

func TestTerminateConnection(t *testing.T) {
	ts := testutil.NewTestServer(t)

	dom, domToken := testutil.NewUserBuilder().WithRole(domain.RoleDom).BuildAndAuthenticate(t, ts)
	sub, subToken := testutil.NewUserBuilder().WithRole(domain.RoleSub).BuildAndAuthenticate(t, ts)
	testutil.NewConnectionBuilder(dom, sub).Build(t, ts.DB.DB)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/connections/terminate"), nil, subToken)
	var terminated struct {
		Status string `json:"status"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &terminated)
	resp.Body.Close()
	assert.Equal(t, string(domain.ConnectionStatusTerminated), terminated.Status)

	// The other party no longer has an active connection to terminate.
	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/connections/terminate"), nil, domToken)
	testutil.AssertErrorCode(t, resp, http.StatusNotFound, "CONNECTION_NOT_FOUND")
	resp.Body.Close()
}

func TestAdminConnectionEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)

	adminToken := loginAdmin(t, ts)
	dom, domToken := testutil.NewUserBuilder().WithRole(domain.RoleDom).BuildAndAuthenticate(t, ts)
	sub, _ := testutil.NewUserBuilder().WithRole(domain.RoleSub).BuildAndAuthenticate(t, ts)

	// Non-admins are rejected outright.
	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/connections/admin/all"), nil, domToken)
	testutil.AssertErrorCode(t, resp, http.StatusForbidden, "FORBIDDEN")
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/connections/admin/create"), map[string]string{
		"domId": dom.ID.String(),
		"subId": sub.ID.String(),
	}, adminToken)
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	testutil.AssertJSONResponse(t, resp, &created)
	resp.Body.Close()
	require.NotEmpty(t, created.ID)

	// Pairing the same dom again fails.
	otherSub, _ := testutil.NewUserBuilder().WithRole(domain.RoleSub).BuildAndAuthenticate(t, ts)
	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/connections/admin/create"), map[string]string{
		"domId": dom.ID.String(),
		"subId": otherSub.ID.String(),
	}, adminToken)
	testutil.AssertErrorCode(t, resp, http.StatusBadRequest, "DOM_ALREADY_CONNECTED")
	resp.Body.Close()

	// Role mismatch surfaces as a validation failure on the offending side.
	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/connections/admin/create"), map[string]string{
		"domId": sub.ID.String(),
		"subId": dom.ID.String(),
	}, adminToken)
	testutil.AssertErrorCode(t, resp, http.StatusBadRequest, "INVALID_DOM")
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/connections/admin/all?limit=10"), nil, adminToken)
	var list struct {
		Connections []struct {
			ID string `json:"id"`
		} `json:"connections"`
		Total int64 `json:"total"`
		Limit int   `json:"limit"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &list)
	resp.Body.Close()
	require.Len(t, list.Connections, 1)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, 10, list.Limit)

	// The echoed limit reflects the clamping the listing applied.
	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/connections/admin/all"), nil, adminToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &list)
	resp.Body.Close()
	assert.Equal(t, service.DefaultConnectionPageSize, list.Limit)

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/connections/admin/all?limit=500"), nil, adminToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &list)
	resp.Body.Close()
	assert.Equal(t, service.MaxConnectionPageSize, list.Limit)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/connections/admin/"+created.ID+"/terminate"), nil, adminToken)
	var terminated struct {
		Status string `json:"status"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &terminated)
	resp.Body.Close()
	assert.Equal(t, string(domain.ConnectionStatusTerminated), terminated.Status)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/connections/admin/"+created.ID+"/terminate"), nil, adminToken)
	testutil.AssertErrorCode(t, resp, http.StatusBadRequest, "CONNECTION_NOT_ACTIVE")
	resp.Body.Close()
}
