package member

import (
	"strings"
)

const rwandaCode = "250"

// Phone is a phone number split into a country code ("+250") and local digits.
// Code is nil when no country code could be determined.
type Phone struct {
	Code   *string `json:"code"`
	Number string  `json:"number"`
}

// ParsePhone normalizes free-form phone input. Numbers are assumed Rwandan
// unless an explicit "+<code>" prefix says otherwise.
func ParsePhone(raw string) Phone {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, raw)

	var code, number string
	switch {
	case strings.HasPrefix(cleaned, rwandaCode):
		code, number = rwandaCode, cleaned[len(rwandaCode):]
	case strings.HasPrefix(cleaned, "07"):
		code, number = rwandaCode, cleaned[1:]
	case strings.HasPrefix(cleaned, "7"):
		code, number = rwandaCode, cleaned
	case strings.HasPrefix(cleaned, "+"):
		code, number = splitInternational(strings.TrimLeft(cleaned, "+"))
	default:
		number = cleaned
	}

	if code == rwandaCode && !strings.HasPrefix(number, "7") {
		number = strings.TrimPrefix(number, "0")
		if !strings.HasPrefix(number, "7") {
			number = "7" + number
		}
	}

	p := Phone{Number: number}
	if code != "" {
		c := "+" + code
		p.Code = &c
	}
	return p
}

// splitInternational separates a country code from a number given without
// its leading plus. It prefers 250, otherwise takes up to three leading
// digits as the code.
func splitInternational(digits string) (code, number string) {
	if strings.HasPrefix(digits, rwandaCode) {
		return rwandaCode, digits[len(rwandaCode):]
	}

	n := 0
	for n < len(digits) && n < 3 && digits[n] >= '0' && digits[n] <= '9' {
		n++
	}
	if n == 0 {
		return "", digits
	}
	return digits[:n], digits[n:]
}
