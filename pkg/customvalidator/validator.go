package customvalidator

import (
	"reflect"
	"regexp"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"

	"staffhub/pkg/channel"
	"staffhub/pkg/phone"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	companyStatuses = map[string]bool{"active": true, "inactive": true}
	messageStatuses = map[string]bool{"sent": true, "read": true, "scheduled": true, "draft": true}
)

// RegisterCustomValidations регистрирует null-типы и все правила проекта.
// Телефоны проверяются в регионе phones.
func RegisterCustomValidations(v *validator.Validate, phones *phone.Normalizer) error {
	registerNullTypes(v)

	rules := map[string]validator.Func{
		"phone_e164": func(fl validator.FieldLevel) bool {
			return phones.Valid(fl.Field().String())
		},
		"channel":        isChannel,
		"company_status": isCompanyStatus,
		"message_status": isMessageStatus,
		"custom_email":   isGoodEmailFormat,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func isChannel(fl validator.FieldLevel) bool {
	_, err := channel.Parse(fl.Field().String())
	return err == nil
}

func isCompanyStatus(fl validator.FieldLevel) bool {
	return companyStatuses[fl.Field().String()]
}

func isMessageStatus(fl validator.FieldLevel) bool {
	return messageStatuses[fl.Field().String()]
}

// registerNullTypes учит валидатор смотреть внутрь null.String, null.Int и т.д.
// Невалидное значение превращается в nil, чтобы сработал omitempty.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok && val.Valid {
			return val.String
		}
		return nil
	}, null.String{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Uint64); ok && val.Valid {
			return val.Uint64
		}
		return nil
	}, null.Uint64{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Bool); ok && val.Valid {
			return val.Bool
		}
		return nil
	}, null.Bool{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Time); ok && val.Valid {
			return val.Time
		}
		return nil
	}, null.Time{})
}
