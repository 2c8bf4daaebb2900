// Package identity validates Brazilian tax ids and normalizes contact fields.
package identity

import (
	"fmt"
	"strings"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
)

var (
	ErrInvalidTaxID      = fmt.Errorf("%w: invalid tax id", errs.ErrValidation)
	ErrInvalidPersonType = fmt.Errorf("%w: invalid person type", errs.ErrValidation)
	ErrInvalidPhone      = fmt.Errorf("%w: invalid phone", errs.ErrValidation)
)

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits drops every character that is not 0-9.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ValidateCPF checks an individual tax id. Punctuation is ignored.
func ValidateCPF(s string) error {
	digits := toInts(OnlyDigits(s))
	if len(digits) != 11 || repeated(digits) {
		return ErrInvalidTaxID
	}

	first := checkDigit(digits[:9], descending(10, 9))
	if first != digits[9] {
		return ErrInvalidTaxID
	}
	second := checkDigit(digits[:10], descending(11, 10))
	if second != digits[10] {
		return ErrInvalidTaxID
	}
	return nil
}

// ValidateCNPJ checks a company tax id. Punctuation is ignored.
func ValidateCNPJ(s string) error {
	digits := toInts(OnlyDigits(s))
	if len(digits) != 14 || repeated(digits) {
		return ErrInvalidTaxID
	}

	if checkDigit(digits[:12], cnpjFirstWeights) != digits[12] {
		return ErrInvalidTaxID
	}
	if checkDigit(digits[:13], cnpjSecondWeights) != digits[13] {
		return ErrInvalidTaxID
	}
	return nil
}

// ValidateTaxID picks the checksum matching the person type.
func ValidateTaxID(personType entities.PersonType, s string) error {
	switch personType {
	case entities.PersonTypeIndividual:
		return ValidateCPF(s)
	case entities.PersonTypeCompany:
		return ValidateCNPJ(s)
	default:
		return ErrInvalidPersonType
	}
}

// ValidatePhone accepts 10 or 11 digit numbers, with or without the 55 country code.
func ValidatePhone(s string) error {
	digits := NationalPhone(s)
	if len(digits) != 10 && len(digits) != 11 {
		return ErrInvalidPhone
	}
	return nil
}

// NationalPhone strips punctuation and a leading 55 country code.
func NationalPhone(s string) string {
	digits := OnlyDigits(s)
	if len(digits) > 11 && strings.HasPrefix(digits, "55") {
		digits = digits[2:]
	}
	return digits
}

func FormatCPF(s string) string {
	d := OnlyDigits(s)
	if len(d) != 11 {
		return d
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

func FormatCNPJ(s string) string {
	d := OnlyDigits(s)
	if len(d) != 14 {
		return d
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}

// FormatTaxID formats by digit count.
func FormatTaxID(s string) string {
	d := OnlyDigits(s)
	switch len(d) {
	case 11:
		return FormatCPF(d)
	case 14:
		return FormatCNPJ(d)
	}
	return d
}

// FormatPhone renders (11) 98765-4321 for mobiles and (11) 3456-7890 for landlines.
func FormatPhone(s string) string {
	d := NationalPhone(s)
	switch len(d) {
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	}
	return d
}

func FormatPostalCode(s string) string {
	d := OnlyDigits(s)
	if len(d) != 8 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

func checkDigit(digits, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += digits[i] * w
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func descending(from, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = from - i
	}
	return out
}

func toInts(s string) []int {
	out := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = int(s[i] - '0')
	}
	return out
}

// 000.000.000-00 and friends satisfy the checksum but are not issued.
func repeated(digits []int) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}
