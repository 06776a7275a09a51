package validator

import (
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"messaging_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	tagUsername       = "username"
	tagMessageContent = "message_content"
	tagRole           = "role"

	MaxMessageLength = 2000
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister(tagUsername, validateUsername)
	mustRegister(tagMessageContent, validateMessageContent)
	mustRegister(tagRole, validateRole)
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// validateMessageContent caps the raw length and rejects whitespace-only content.
func validateMessageContent(fl validator.FieldLevel) bool {
	content := fl.Field().String()
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return false
	}
	return strings.TrimSpace(content) != ""
}

func validateRole(fl validator.FieldLevel) bool {
	return models.RoleName(fl.Field().String()).IsValid()
}
