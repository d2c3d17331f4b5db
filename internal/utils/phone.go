package utils

import (
	"regexp"
	"strings"
)

// bahrainPhoneRegex accepts Bahraini mobile and landline numbers with an
// optional +973 prefix. The allocation blocks mirror the national
// numbering plan (3x mobile ranges, 66x/6500 MVNO ranges, 1x landlines).
var bahrainPhoneRegex = regexp.MustCompile(
	`^(\+973)?(3(20|21|22|23|80|81|82|83|84|87|88|89|9\d)\d{5}|33\d{6}|34[0-6]\d{5}|35(0|1|3|4|5)\d{5}|36\d{6}|37\d{6}|31\d{6}|66(3|6|7|8|9)\d{5}|6500\d{4}|1\d{7})$`)

// IsValidBahrainPhone validates the regional phone format required on
// rental requests and dealer listings.
func IsValidBahrainPhone(phone string) bool {
	cleaned := strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	return bahrainPhoneRegex.MatchString(cleaned)
}

func NormalizePhone(phone string) string {
	// Remove all spaces, dashes, parentheses, etc.
	normalized := regexp.MustCompile(`[^\d+]`).ReplaceAllString(phone, "")

	// Ensure it carries the country prefix
	if !strings.HasPrefix(normalized, "+") {
		normalized = DefaultCountryCode + normalized
	}

	return normalized
}

func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return phone
	}

	// Show last 4 digits
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
