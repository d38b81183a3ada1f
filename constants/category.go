package constants

import "strings"

// Category is a PII category in the detection taxonomy. The oracle is
// prompted with this exact set; anything else canonicalizes to Unknown.
type Category string

const (
	Name        Category = "name"
	Email       Category = "email"
	Phone       Category = "phone"
	Address     Category = "address"
	CreditCard  Category = "credit_card"
	SSN         Category = "ssn"
	BankAccount Category = "bank_account"
	IDNumber    Category = "id_number"
	DateOfBirth Category = "date_of_birth"
	Medical     Category = "medical"
	Unknown     Category = "unknown"
)

var allCategories = []Category{
	Name,
	Email,
	Phone,
	Address,
	CreditCard,
	SSN,
	BankAccount,
	IDNumber,
	DateOfBirth,
	Medical,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// replacements maps each category to its fixed redaction literal.
var replacements = map[Category]string{
	Name:        "[NAME REDACTED]",
	Email:       "[EMAIL REDACTED]",
	Phone:       "[PHONE REDACTED]",
	Address:     "[ADDRESS REDACTED]",
	CreditCard:  "[CARD NUMBER REDACTED]",
	SSN:         "[SSN REDACTED]",
	BankAccount: "[ACCOUNT NUMBER REDACTED]",
	IDNumber:    "[ID NUMBER REDACTED]",
	DateOfBirth: "[DOB REDACTED]",
	Medical:     "[MEDICAL INFO REDACTED]",
}

// ReplacementFor returns the redaction literal for a category, with a
// generic fallback for anything unmapped.
func ReplacementFor(c Category) string {
	if r, ok := replacements[c]; ok {
		return r
	}
	return "[SENSITIVE INFO REDACTED]"
}

// Canonicalize maps free-form oracle output to a known category.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	synonyms := map[string]Category{
		"full_name":               Name,
		"first_name":              Name,
		"last_name":               Name,
		"person":                  Name,
		"e_mail":                  Email,
		"email_address":           Email,
		"phone_number":            Phone,
		"telephone":               Phone,
		"street_address":          Address,
		"postal_code":             Address,
		"credit_card_number":      CreditCard,
		"card_number":             CreditCard,
		"social_security_number":  SSN,
		"national_id":             SSN,
		"bank_account_number":     BankAccount,
		"account_number":          BankAccount,
		"iban":                    BankAccount,
		"passport":                IDNumber,
		"passport_number":         IDNumber,
		"drivers_license":         IDNumber,
		"id":                      IDNumber,
		"dob":                     DateOfBirth,
		"birth_date":              DateOfBirth,
		"medical_information":     Medical,
		"health":                  Medical,
		"medical_record_number":   Medical,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return Unknown, false
}
