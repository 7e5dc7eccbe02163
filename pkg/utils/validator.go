package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	zipCodeRegex = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	controlRegex = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateZipCode validates a US ZIP or ZIP+4 code
func ValidateZipCode(zip string) error {
	if !zipCodeRegex.MatchString(zip) {
		return fmt.Errorf("invalid zip code: %s", zip)
	}
	return nil
}

// ValidateNonNegative rejects negative money amounts
func ValidateNonNegative(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%s cannot be negative: %s", field, amount.StringFixed(2))
	}
	return nil
}

// SanitizeString strips control characters and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlRegex.ReplaceAllString(s, ""))
}
