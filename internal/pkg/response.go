package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/flyingpig/internal/domain"
)

// Response is the standard JSON envelope for API responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the JSON envelope for validation error responses.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	write(c, http.StatusOK, "success", data)
}

// Created sends a 201 JSON response with the given data.
func Created(c *gin.Context, data any) {
	write(c, http.StatusCreated, "created", data)
}

// List sends a 200 JSON response for a paginated result.
func List[T any](c *gin.Context, result *domain.PageResult[T]) {
	write(c, http.StatusOK, "success", result)
}

// Error sends a JSON error response. If err is a *domain.AppError, its code is
// mapped to the appropriate HTTP status; otherwise 500 is returned.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	msg := "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	write(c, status, msg, nil)
}

// Abort writes an error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func write(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, Response{Code: status, Message: msg, Data: data})
}

// ValidationError sends a 400 JSON response with per-field validation error details.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it sends a ValidationError response and returns false.
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	RegisterValidators()
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// BindQuery is BindAndValidate for query string parameters.
func BindQuery(c *gin.Context, obj any) bool {
	RegisterValidators()
	if err := c.ShouldBindQuery(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// validationErrorWithType sends a 400 validation error response.
// When obj is non-nil, JSON tag names are preferred over struct field names.
func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		write(c, http.StatusBadRequest, "bad request", nil)
		return
	}

	jsonTags := buildJSONTagMap(obj)
	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := jsonTags[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		fieldErrors[name] = fieldMessage(fe)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fieldErrors,
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "len":
		return "Must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "Must contain only digits"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "eqfield":
		return "Must match " + toSnake(fe.Param())
	case "gte", "lte":
		return "Out of range"
	case tagUserID:
		return "Must be 4-30 letters, digits, '_', '.' or '-'"
	case tagMobile:
		return "Must be a valid mobile number"
	case tagStrongPassword:
		return passwordPolicyMessage
	case tagCountry:
		return "Must be an ISO 3166 alpha-2 country code"
	case tagLanguage:
		return "Must be an ISO 639-1 language code"
	}
	return "Invalid value"
}

// toSnake converts a Go field name such as NewPassword to new_password.
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name.
// Fields of embedded structs are included. If obj is nil or not a struct
// (pointer), it returns nil.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	addTagNames(t, m)
	return m
}

func addTagNames(t reflect.Type, m map[string]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Tag.Get("json") == "" {
			addTagNames(f.Type, m)
			continue
		}
		name := JSONName(f)
		if name == "" {
			name = formName(f)
		}
		if name != "" {
			m[f.Name] = name
		}
	}
}

// JSONName extracts the field name from a struct field's json tag.
func JSONName(f reflect.StructField) string {
	return parseTagName(f.Tag.Get("json"))
}

func formName(f reflect.StructField) string {
	return parseTagName(f.Tag.Get("form"))
}

func parseTagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
