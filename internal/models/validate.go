package models

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	structValidator *validator.Validate
	validatorOnce   sync.Once
)

func validateStruct(v interface{}) error {
	validatorOnce.Do(func() {
		structValidator = validator.New()
	})
	return structValidator.Struct(v)
}
