package validator

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	passwordRegex = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*()_+\-=[\]{};':"\\|,.<>/?]{6,}$`)
)

// stripPhone оставляет в номере только цифры и ведущий плюс.
func stripPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, phone)
}

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePhone принимает номера с пробелами, скобками и дефисами,
// проверяется только цифровая часть.
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(stripPhone(phone))
}

func ValidatePassword(password string) bool {
	if len(password) < 6 {
		return false
	}
	return passwordRegex.MatchString(password)
}

func ValidateNamePart(name string) bool {
	if len(name) < 2 {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != '-' && r != ' ' && r != '\'' {
			return false
		}
	}
	return true
}

// FormatPhone приводит номер к виду +7XXXXXXXXXX, восьмерка в начале
// считается российским префиксом.
func FormatPhone(phone string) string {
	clean := stripPhone(phone)
	if strings.HasPrefix(clean, "+") {
		return clean
	}
	switch {
	case strings.HasPrefix(clean, "8"):
		return "+7" + clean[1:]
	case strings.HasPrefix(clean, "7"):
		return "+" + clean
	default:
		return "+7" + clean
	}
}

// FormatName пишет каждую часть имени с заглавной буквы,
// двойные фамилии через дефис обрабатываются по частям.
func FormatName(name string) string {
	parts := strings.Fields(name)
	for i, part := range parts {
		subparts := strings.Split(part, "-")
		for j, sub := range subparts {
			subparts[j] = titleCase(sub)
		}
		parts[i] = strings.Join(subparts, "-")
	}
	return strings.Join(parts, " ")
}

func titleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
