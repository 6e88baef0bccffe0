package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Field("email", "taken").Status())
	assert.Equal(t, http.StatusUnauthorized, Authentication("no").Status())
	assert.Equal(t, http.StatusUnauthorized, Token("bad token", nil).Status())
	assert.Equal(t, http.StatusForbidden, Authorization("no").Status())
	assert.Equal(t, http.StatusNotFound, NotFound("gone").Status())
	assert.Equal(t, http.StatusConflict, Conflict("busy").Status())
	assert.Equal(t, http.StatusInternalServerError, Internal("boom", errors.New("x")).Status())
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("delete product: %w", Conflict("Product has stock available"))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindInternal))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("signature is invalid")
	err := Token("Token is invalid or expired", cause)

	assert.Equal(t, "Token is invalid or expired: signature is invalid", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, map[string]string{"email": "taken"}, Field("email", "taken").Fields)
}
