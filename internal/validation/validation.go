// Package validation содержит функции валидации входных данных.
package validation

import (
	"strings"
	"unicode"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15

	minUsernameLen = 3
	maxUsernameLen = 32

	minCodeLen = 3
	maxCodeLen = 32
)

// IsValidPhone проверяет, что номер телефона состоит из 10–15 цифр с необязательным ведущим «+».
func IsValidPhone(phone string) bool {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return false
	}
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// IsValidUsername проверяет длину логина и допустимые символы: буквы, цифры, «_», «.», «-».
func IsValidUsername(username string) bool {
	n := len([]rune(username))
	if n < minUsernameLen || n > maxUsernameLen {
		return false
	}
	for _, ch := range username {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			continue
		}
		switch ch {
		case '_', '.', '-':
			continue
		}
		return false
	}
	return true
}

// NormalizeVoucherCode приводит код ваучера к каноническому виду: без пробелов по краям, в верхнем регистре.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidVoucherCode проверяет нормализованный код ваучера: латинские буквы, цифры, «-» и «_».
func IsValidVoucherCode(code string) bool {
	if len(code) < minCodeLen || len(code) > maxCodeLen {
		return false
	}
	for _, ch := range code {
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
		default:
			return false
		}
	}
	return true
}
