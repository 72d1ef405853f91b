package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const phoneDigits = 10

// Digits strips every non-digit character.
func Digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone renders a stored phone number: "(555) 123-4567" for ten digits,
// "+1 (555) 123-4567" when a country code is present, bare digits otherwise.
func FormatPhone(phone string) string {
	digits := Digits(phone)

	switch {
	case digits == "":
		return ""
	case len(digits) == phoneDigits:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	case len(digits) > phoneDigits:
		cc := len(digits) - phoneDigits
		return fmt.Sprintf("+%s (%s) %s-%s", digits[:cc], digits[cc:cc+3], digits[cc+3:cc+6], digits[cc+6:])
	default:
		return digits
	}
}

// FormatPhoneInput formats a partially typed number, keeping at most ten digits.
func FormatPhoneInput(value string) string {
	digits := Digits(value)
	if len(digits) > phoneDigits {
		digits = digits[:phoneDigits]
	}

	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 6:
		return fmt.Sprintf("(%s) %s", digits[:3], digits[3:])
	default:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	}
}

// FormatCurrency renders a salary as Canadian dollars, e.g. "CA$50,000.00".
// A nil amount renders as an empty string.
func FormatCurrency(amount *Amount) string {
	if amount == nil {
		return ""
	}

	value := float64(*amount)
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	cents := int64(math.Round(value * 100)) //nolint:mnd // two decimals
	whole := strconv.FormatInt(cents/100, 10)

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	return fmt.Sprintf("%sCA$%s.%02d", sign, grouped.String(), cents%100)
}

// FormatDate renders a hire date as "Jan 2, 2006", or "" when absent.
func FormatDate(date *Date) string {
	if date == nil || date.IsZero() {
		return ""
	}
	return date.Format("Jan 2, 2006")
}
