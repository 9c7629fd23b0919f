package fundsxml

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
)

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// leiRegex checks for 18 alphanumeric characters followed by 2 check digits.
var leiRegex = regexp.MustCompile(`^[A-Z0-9]{18}[0-9]{2}$`)

// bicRegex checks for bank(4 letters) country(2 letters) location(2) and an optional branch(3).
var bicRegex = regexp.MustCompile(`^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`)

// currencyCodeRegex checks for the format: 3 uppercase letters.
var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateISIN checks if a string is a validly formatted ISIN.
// It returns nil if valid, or a descriptive error if invalid.
// The check digit is verified separately by ValidateISINCheckDigit.
func ValidateISIN(isin string) error {
	// 1. Length validation
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}

	// 2. Format validation
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}
	return nil
}

// ValidateISINCheckDigit verifies the ISO 6166 check digit of a well formatted ISIN.
func ValidateISINCheckDigit(isin string) error {
	if err := ValidateISIN(isin); err != nil {
		return err
	}

	// Convert letters to numbers for check digit calculation
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// Apply a variation of the Luhn algorithm
	sum := 0
	isSecond := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit := int(digits[i] - '0')

		if isSecond {
			digit *= 2
		}

		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}

	expectedCheckDigit := (10 - (sum % 10)) % 10
	actualCheckDigit := int(isin[11] - '0')

	if expectedCheckDigit != actualCheckDigit {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expectedCheckDigit, actualCheckDigit)
	}
	return nil
}

// ValidateLEI checks the ISO 17442 layout of a Legal Entity Identifier.
// The length is checked before the format.
func ValidateLEI(lei string) error {
	if len(lei) != 20 {
		return fmt.Errorf("invalid length: must be 20 characters, got %d", len(lei))
	}
	if !leiRegex.MatchString(lei) {
		return fmt.Errorf("invalid format: must be 18 uppercase alphanumeric chars and 2 digits")
	}
	return nil
}

// ValidateBIC checks the ISO 9362 layout of a Business Identifier Code.
func ValidateBIC(bic string) error {
	if len(bic) != 8 && len(bic) != 11 {
		return fmt.Errorf("invalid length: must be 8 or 11 characters, got %d", len(bic))
	}
	if !bicRegex.MatchString(bic) {
		return fmt.Errorf("invalid format: must be 6 letters followed by 2 or 5 alphanumeric chars")
	}
	return nil
}

// ValidateCurrency checks the format of an ISO 4217 currency code.
func ValidateCurrency(ccy string) error {
	if !currencyCodeRegex.MatchString(ccy) {
		return fmt.Errorf("invalid currency format: must be 3 uppercase letters, got %q", ccy)
	}
	return nil
}

// KnownCurrency reports whether ccy is in the ISO 4217 table.
func KnownCurrency(ccy string) bool {
	return money.GetCurrency(ccy) != nil
}
