// Copyright 2024 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Lowercase slugs, dotted domains, and usernames are validated the same
// way whether they arrive as a path parameter (checked directly) or a
// struct field (checked via the registered "slug"/"domain"/"username"
// validator tags).
var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	domainPattern   = regexp.MustCompile(`^[-a-z0-9]+\.[a-z]+$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9]{2,}$`)
)

func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func IsDomain(s string) bool {
	return domainPattern.MatchString(s)
}

func IsUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

func IsLang(s string) bool {
	return s == "sv" || s == "en"
}

func registerIdentifierValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	})
	_ = validate.RegisterValidation("domain", func(fl validator.FieldLevel) bool {
		return IsDomain(fl.Field().String())
	})
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsUsername(fl.Field().String())
	})
	_ = validate.RegisterValidation("lang", func(fl validator.FieldLevel) bool {
		return IsLang(fl.Field().String())
	})
}
