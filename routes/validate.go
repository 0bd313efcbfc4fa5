package routes

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/vitalvas/reroute/mux"
)

// FieldError describes one invalid field of a definition file.
type FieldError struct {
	Field   string
	Tag     string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every invalid field of a definition file.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "routes: invalid definition: " + strings.Join(msgs, "; ")
}

var messages = map[string]string{
	"required":      "is required",
	"min":           "must have at least {param} entries",
	"type_name":     "must contain only letters, digits, '_' or '\\'",
	"route_pattern": "is not a valid route pattern",
	"number":        "must be a number",
	"string_list":   "must be a string or a list of strings",
}

// typeNamePattern matches the type names a route pattern can declare.
var typeNamePattern = regexp.MustCompile(`^[A-Za-z0-9_\\]+$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func definitionValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("type_name", func(fl validator.FieldLevel) bool {
			return typeNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("route_pattern", func(fl validator.FieldLevel) bool {
			_, err := mux.CompilePattern(fl.Field().String())
			return err == nil
		})

		v.RegisterStructValidation(validateDefinitionOptions, Definition{})

		validate = v
	})

	return validate
}

// validateDefinitionOptions checks the options whose type the router relies on.
func validateDefinitionOptions(sl validator.StructLevel) {
	def, ok := sl.Current().Interface().(Definition)
	if !ok {
		return
	}
	opts := mux.Options(def.Options)

	if v, ok := opts.Get(mux.OptionWeight); ok {
		if _, ok := opts.Float(mux.OptionWeight); !ok {
			sl.ReportError(v, "options."+mux.OptionWeight, "Options", "number", "")
		}
	}

	for _, key := range []string{mux.OptionClasses, mux.OptionActions, mux.OptionAction} {
		v, ok := opts.Get(key)
		if !ok {
			continue
		}
		switch list := v.(type) {
		case string, []string:
		case []any:
			for _, e := range list {
				if _, isString := e.(string); !isString {
					sl.ReportError(v, "options."+key, "Options", "string_list", "")
					break
				}
			}
		default:
			sl.ReportError(v, "options."+key, "Options", "string_list", "")
		}
	}
}

// Validate checks the file for structural errors and invalid patterns. The
// returned error is a ValidationErrors when fields are invalid.
func (f *File) Validate() error {
	err := definitionValidator().Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("routes: %w", err)
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field:   strings.TrimPrefix(e.Namespace(), "File."),
			Tag:     e.Tag(),
			Value:   e.Value(),
			Message: formatMessage(e),
		})
	}

	return out
}

func formatMessage(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return "failed on the '" + e.Tag() + "' rule"
	}
	return strings.ReplaceAll(msg, "{param}", e.Param())
}
