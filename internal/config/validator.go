package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	tagsyncerrors "github.com/alexisbeaulieu97/tagsync/pkg/errors"
)

// ValidateConfig performs struct-tag validation on cfg.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return tagsyncerrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return tagsyncerrors.NewValidationError(field, msg, err)
	}

	return tagsyncerrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}
