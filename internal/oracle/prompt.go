package oracle

import (
	"strings"

	"github.com/ParryPee/EzCensor/constants"
)

func buildAnalysisPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze the following text for personally identifiable information (PII) and sensitive data. ")
	b.WriteString("Identify and categorize any sensitive information found.\n\n")
	b.WriteString("Categories to look for:\n")
	for _, cat := range categoryDescriptions {
		b.WriteString("- ")
		b.WriteString(cat)
		b.WriteString("\n")
	}
	b.WriteString("\nText to analyze:\n")
	b.WriteString(text)
	b.WriteString("\n\nRespond with ONLY a JSON object of this shape:\n")
	b.WriteString(`{
  "found_pii": true,
  "categories": ["` + strings.Join(constants.AsStringSlice()[:2], `", "`) + `", "..."],
  "details": [
    {"type": "category", "text": "actual sensitive text found", "confidence": 0.0, "start_pos": 0, "end_pos": 0}
  ],
  "recommendation": "brief recommendation"
}`)
	b.WriteString("\n\nUse the exact category identifiers: ")
	b.WriteString(strings.Join(constants.AsStringSlice(), ", "))
	b.WriteString(". Confidence must be between 0.0 and 1.0. ")
	b.WriteString("Do NOT include any explanation outside the JSON object; the response is parsed mechanically.")
	return b.String()
}

var categoryDescriptions = []string{
	"Names (first, last, full names)",
	"Email addresses",
	"Phone numbers",
	"Addresses (street, city, postal codes)",
	"Credit card numbers",
	"Social security numbers",
	"Bank account numbers",
	"ID numbers (passport, driver's license, etc.)",
	"Date of birth",
	"Medical information",
}
