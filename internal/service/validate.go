package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = validator.New()

func validEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// validURL accepts absolute http(s) links only.
func validURL(s string) bool {
	return validate.Var(s, "required,http_url") == nil
}

func optionalEmail(s *string) (*string, error) {
	v := trimmed(s)
	if v == nil {
		return nil, nil
	}
	lower := strings.ToLower(*v)
	if !validEmail(lower) {
		return nil, invalid("E-mail inválido")
	}
	return &lower, nil
}

func optionalURL(s *string, field string) (*string, error) {
	v := trimmed(s)
	if v == nil {
		return nil, nil
	}
	if !validURL(*v) {
		return nil, invalid("%s inválido", field)
	}
	return v, nil
}
