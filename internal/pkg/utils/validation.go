package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()

	// Account names are lowercase handles; assets are short upper-case symbols
	// with an optional suffix, e.g. USDk.
	accountIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)
	assetIDPattern   = regexp.MustCompile(`^[A-Za-z0-9]{2,16}$`)
)

func init() {
	_ = validate.RegisterValidation("account_id", func(fl validator.FieldLevel) bool {
		return accountIDPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("asset_id", func(fl validator.FieldLevel) bool {
		return assetIDPattern.MatchString(fl.Field().String())
	})
}

// ValidateRequest runs struct-tag validation on a bound request body.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}
