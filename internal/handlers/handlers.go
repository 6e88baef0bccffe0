package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/auth"
	"github.com/storefront/catalog-api/internal/middleware"
	"github.com/storefront/catalog-api/internal/store"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store    *store.Store
	Accounts *auth.Accounts
	Tokens   *auth.TokenService

	MediaDir string // where uploaded product images are written
	BaseURL  string // public prefix for media links
}

func init() {
	// Report validation failures under the JSON field names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON decodes the request body into obj and validates its binding tags.
// An empty body is validated as the zero value so required fields are
// still reported per field.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil
	}
	return bindError(err)
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return apperr.Validation("Invalid input.", fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Field(typeErr.Field, fmt.Sprintf("Expected a %s.", typeErr.Type.Kind()))
	}

	return apperr.Validation("Malformed request body.", nil)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

// pathID parses the :id segment. Ids that cannot exist are reported as
// missing resources.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("Not found.")
	}
	return id, nil
}

// actorID is the id of the authenticated caller. Write routes sit behind
// the permission middleware, so a caller is always present there.
func actorID(c *gin.Context) int64 {
	if u := middleware.CurrentUser(c); u != nil {
		return u.ID
	}
	return 0
}

var respondError = middleware.RespondError
