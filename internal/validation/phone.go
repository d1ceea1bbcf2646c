// phone.go provides E.164 phone number validation used when storing student
// contact numbers and WhatsApp links.
package validation

import (
	"fmt"
	"regexp"
)

// e164Pattern matches E.164 phone numbers: a leading +, a non-zero country
// code digit, and up to 14 further digits.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// ValidateE164 validates that a phone number is in E.164 format
// (e.g. +5511999998888). WhatsApp deep links require this format.
func ValidateE164(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone number is empty")
	}
	if !e164Pattern.MatchString(phone) {
		return fmt.Errorf("phone number must be in E.164 format (e.g. +5511999998888)")
	}
	return nil
}
