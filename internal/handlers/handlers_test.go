package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/models"
)

func testContext(method, body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	return appErr.Fields
}

func TestBindJSONReportsJSONFieldNames(t *testing.T) {
	var in ChangePasswordInput
	err := bindJSON(testContext(http.MethodPost, `{"old_password": "x"}`), &in)
	assert.Equal(t, map[string]string{"new_password": "This field is required."}, fieldsOf(t, err))
}

func TestBindJSONEmptyBodyStillValidates(t *testing.T) {
	var in TokenInput
	err := bindJSON(testContext(http.MethodPost, ""), &in)
	assert.Contains(t, fieldsOf(t, err), "token")

	var profile models.ProfileUpdate
	assert.NoError(t, bindJSON(testContext(http.MethodPatch, ""), &profile))
}

func TestBindJSONTypeAndSyntaxErrors(t *testing.T) {
	var stock models.StockInput
	err := bindJSON(testContext(http.MethodPatch, `{"quantity": "many"}`), &stock)
	assert.Contains(t, fieldsOf(t, err), "quantity")

	err = bindJSON(testContext(http.MethodPatch, `{"quantity": `), &stock)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = bindJSON(testContext(http.MethodPatch, `{"quantity": -3}`), &stock)
	assert.Equal(t, "Ensure this value is greater than or equal to 0.", fieldsOf(t, err)["quantity"])
}

func TestPathID(t *testing.T) {
	c := testContext(http.MethodGet, "")
	c.Params = gin.Params{{Key: "id", Value: "17"}}
	id, err := pathID(c)
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	for _, raw := range []string{"abc", "0", "-4", ""} {
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, err := pathID(c)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), raw)
	}
}
