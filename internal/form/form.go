// Package form validates operator input before it is turned into API calls.
// Validation failures never reach the network.
package form

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	mustRegister("price", validatePrice)
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("form: register %q validation: %v", tag, err))
	}
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// validatePrice accepts any text that still has digits once everything else
// is stripped, so "$ 1.200" is a valid price of 1200.
func validatePrice(fl validator.FieldLevel) bool {
	return PriceDigits(fl.Field().String()) != ""
}

// PriceDigits strips every non-digit from s.
func PriceDigits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return strings.Join(parts, "; ")
}

// messages holds the operator-facing text per field and failed rule.
var messages = map[string]map[string]string{
	"name": {
		"required": "El nombre es obligatorio",
	},
	"description": {
		"required": "La descripción es obligatoria",
	},
	"price": {
		"required": "El precio es obligatorio",
		"price":    "El precio debe ser un número",
	},
	"allowsClarifications": {
		"oneof": "Elegí si admite aclaraciones",
	},
	"productType": {
		"oneof": "Elegí comida o bebida",
	},
	"image": {
		"file": "La imagen no existe",
	},
	"email": {
		"required": "El email es obligatorio",
		"email":    "El email no es válido",
	},
	"password": {
		"required": "La contraseña es obligatoria",
	},
}

// check validates v and converts failures into Errors, keeping the first
// failure per field.
func check(v any) Errors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return Errors{"form": err.Error()}
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := messages[field][fe.Tag()]; ok {
			out[field] = msg
			continue
		}
		out[field] = "Valor inválido"
	}
	return out
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// Login is the sign-in form.
type Login struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// Validate trims the email and checks both fields.
func (l *Login) Validate() Errors {
	l.Email = strings.TrimSpace(l.Email)
	return check(l)
}
