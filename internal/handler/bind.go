package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prperemyshlev/wellness-portal/internal/dto"
)

// FieldError describes one field that failed request validation
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message,omitempty"`
}

// bindJSON decodes the request body into out. A missing body or a failed `required`
// rule is reported with the service's missing-field error so every endpoint keeps
// its own messageCode; malformed JSON is INVALID_REQUEST.
func bindJSON(c *gin.Context, out interface{}, missing error) bool {
	err := c.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	if errors.Is(err, io.EOF) {
		respondMissing(c, missing, nil)
		return false
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondMissing(c, missing, gin.H{"fields": fieldErrors(baseStructType(out), validationErrors)})
		return false
	}

	respondError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "invalid request body", parseDecodeError(err, baseStructType(out)))
	return false
}

// bindOptionalJSON is bindJSON for endpoints whose body may be absent
func bindOptionalJSON(c *gin.Context, out interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}

	err := c.ShouldBindJSON(out)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	respondError(c, http.StatusBadRequest, dto.CodeInvalidRequest, "invalid request body", parseDecodeError(err, baseStructType(out)))
	return false
}

func respondMissing(c *gin.Context, missing error, details interface{}) {
	m, ok := lookupError(missing)
	if !ok {
		respondError(c, http.StatusBadRequest, dto.CodeInvalidRequest, missing.Error(), details)
		return
	}
	respondError(c, m.status, m.code, m.err.Error(), details)
}

func fieldErrors(root reflect.Type, errs validator.ValidationErrors) []FieldError {
	fields := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, FieldError{
			Field:   jsonFieldName(root, fe.StructField()),
			Rule:    fe.Tag(),
			Message: validationMessage(fe.Tag(), fe.Param()),
		})
	}
	return fields
}

func parseDecodeError(err error, root reflect.Type) interface{} {
	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		field := typeError.Field
		if name, _, _ := strings.Cut(field, "."); name != "" {
			field = name
		}
		return gin.H{
			"json": "invalid_json_type",
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeError.Type.String()),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Kind() == reflect.Struct {
		return t
	}
	return nil
}

func jsonFieldName(root reflect.Type, structField string) string {
	if root == nil {
		return structField
	}
	sf, ok := root.FieldByName(structField)
	if !ok {
		return structField
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
