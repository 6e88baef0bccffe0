package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/models"
)

func TestAuthorize(t *testing.T) {
	regular := &models.User{ID: 1, IsActive: true}
	staff := &models.User{ID: 2, IsActive: true, IsStaff: true}
	super := &models.User{ID: 3, IsActive: true, IsStaff: true, IsSuperuser: true}
	disabledStaff := &models.User{ID: 4, IsStaff: true}

	cases := []struct {
		name   string
		caller *models.User
		action Action
		want   apperr.Kind
		ok     bool
	}{
		{"anonymous read", nil, ActionRead, 0, true},
		{"regular read", regular, ActionRead, 0, true},
		{"anonymous write", nil, ActionWrite, apperr.KindAuthentication, false},
		{"regular write", regular, ActionWrite, apperr.KindAuthorization, false},
		{"staff write", staff, ActionWrite, 0, true},
		{"disabled staff write", disabledStaff, ActionWrite, apperr.KindAuthorization, false},
		{"staff admin", staff, ActionAdmin, apperr.KindAuthorization, false},
		{"superuser admin", super, ActionAdmin, 0, true},
		{"anonymous admin", nil, ActionAdmin, apperr.KindAuthentication, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.caller, tc.action)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.want, apperr.KindOf(err))
		})
	}
}
