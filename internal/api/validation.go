package api

import (
	"encoding/json" // JSON syntax errors
	"errors"        // Error matching
	"reflect"       // Struct field tags
	"strings"       // Tag parsing
	"sync"          // One-time registration

	"github.com/gin-gonic/gin/binding"       // Gin binding engine
	"github.com/go-playground/validator/v10" // Request validation
)

var validationOnce sync.Once

// InitValidation makes the gin validator report fields by their json names
func InitValidation() {
	validationOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

// validationDetails converts binding errors into a map of field to message
func validationDetails(err error) map[string]string {
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"payload": "invalid payload"}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "is required"
		case "email":
			out[fe.Field()] = "must be a valid email"
		case "max":
			out[fe.Field()] = "must be at most " + fe.Param() + " characters long"
		default:
			out[fe.Field()] = "is invalid"
		}
	}
	return out
}
