package constants

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{"name", Name, true},
		{"Name", Name, true},
		{" EMAIL ", Email, true},
		{"e-mail", Email, true},
		{"email address", Email, true},
		{"phone_number", Phone, true},
		{"credit card number", CreditCard, true},
		{"social-security-number", SSN, true},
		{"IBAN", BankAccount, true},
		{"passport", IDNumber, true},
		{"dob", DateOfBirth, true},
		{"health", Medical, true},
		{"favorite_color", Unknown, false},
		{"", Unknown, false},
	}
	for _, tc := range cases {
		got, ok := Canonicalize(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Canonicalize(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestReplacementFor(t *testing.T) {
	if got := ReplacementFor(Name); got != "[NAME REDACTED]" {
		t.Errorf("name replacement = %q", got)
	}
	if got := ReplacementFor(Email); got != "[EMAIL REDACTED]" {
		t.Errorf("email replacement = %q", got)
	}
	if got := ReplacementFor(Unknown); got != "[SENSITIVE INFO REDACTED]" {
		t.Errorf("unknown replacement = %q", got)
	}
	if got := ReplacementFor(Category("bogus")); got != "[SENSITIVE INFO REDACTED]" {
		t.Errorf("unmapped replacement = %q", got)
	}
}

func TestAsStringSliceExcludesUnknown(t *testing.T) {
	for _, s := range AsStringSlice() {
		if s == string(Unknown) {
			t.Fatal("unknown must not be offered to the oracle")
		}
	}
	if len(AsStringSlice()) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(AsStringSlice()))
	}
}

func TestNormalizeExt(t *testing.T) {
	cases := map[string]string{
		".PDF":  "pdf",
		"pdf":   "pdf",
		" .Txt": "txt",
		"JPEG":  "jpeg",
		"":      "",
	}
	for in, want := range cases {
		if got := NormalizeExt(in); got != want {
			t.Errorf("NormalizeExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapExtToFormat(t *testing.T) {
	cases := map[string]string{
		"txt":  TXT,
		".pdf": PDF,
		"PNG":  IMAGE,
		"jpeg": IMAGE,
		"bmp":  IMAGE,
		"docx": "",
	}
	for in, want := range cases {
		if got := MapExtToFormat(in); got != want {
			t.Errorf("MapExtToFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
