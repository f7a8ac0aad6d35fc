package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking-gateway/internal/handler"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
)

type ledgerRows []model.Submission

func (l ledgerRows) Get(_ context.Context, id string) (model.Submission, error) {
	return l[0], nil
}

func (l ledgerRows) List(context.Context, model.SubmissionStatus, int) ([]model.Submission, error) {
	return l, nil
}

func adminServer(secret string) *echo.Echo {
	e := echo.New()
	ledger := ledgerRows{{ID: "s1", UserID: "victim", BookingIDs: "b1"}}
	RegisterAdmin(e, &handler.AdminHandler{Ledger: ledger}, secret, "admin")
	return e
}

func get(e *echo.Echo, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSubmissionsRefuseUnsignedAdminToken(t *testing.T) {
	forged := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJhdHRhY2tlciIsInJvbGUiOiJhZG1pbiJ9.forged"
	e := adminServer("")

	for _, target := range []string{"/v1/admin/submissions", "/v1/admin/submissions/s1"} {
		rec := get(e, target, forged)
		assert.Equal(t, http.StatusForbidden, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "victim")
	}
}

func TestSubmissionsServeSignedAdminToken(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a1", "role": "admin"}).SignedString([]byte("k"))
	require.NoError(t, err)

	rec := get(adminServer("k"), "/v1/admin/submissions", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"s1"`)
}
