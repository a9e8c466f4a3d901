package normalize

import "testing"

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  Tiểu Đường   type 2 (ICD-10) ",
		"eGFR",
		"BTM",
		"Suy thận mạn tính (giai đoạn 3)",
		"",
		"   ",
		"HbA1c v2.0",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestNormalizeEmptyIsUnknown(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		if got := Normalize(in); got != "Unknown" {
			t.Errorf("Normalize(%q) = %q, want Unknown", in, got)
		}
	}
}

func TestNormalizeAbbreviationPreservation(t *testing.T) {
	cases := map[string]string{
		"eGFR":  "EGFR",
		"EGFR":  "EGFR",
		"HbA1c": "HbA1c",
		"CKD":   "CKD",
	}
	for in, want := range cases {
		got := Normalize(in)
		if got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
		if got == "Egfr" {
			t.Errorf("Normalize(%q) produced full title-case %q, which corrupts the abbreviation", in, got)
		}
	}
}

func TestNormalizeAbbreviationExpansion(t *testing.T) {
	got := Normalize("btm")
	want := Normalize("bệnh thận mạn")
	if got != want {
		t.Errorf("Normalize(\"btm\") = %q, want it to equal Normalize(\"bệnh thận mạn\") = %q", got, want)
	}
}

func TestNormalizeSynonymCollapse(t *testing.T) {
	a := Normalize("tiểu đường")
	b := Normalize("đái tháo đường")
	if a != b {
		t.Errorf("synonym collapse failed: Normalize(tiểu đường)=%q, Normalize(đái tháo đường)=%q", a, b)
	}
}

func TestNormalizeStripsNoiseAndWhitespace(t *testing.T) {
	got := Normalize("Suy thận mạn   (giai đoạn 3)  [trang 5] v2.1")
	if got == "" || got == "Unknown" {
		t.Fatalf("expected a non-empty normalized name, got %q", got)
	}
	for _, bad := range []string{"(", ")", "[", "]", "v2.1"} {
		if containsSubstr(got, bad) {
			t.Errorf("normalized name %q still contains noise token %q", got, bad)
		}
	}
}

func TestNormalizeCapitalizesFirstCharOnly(t *testing.T) {
	got := Normalize("suy thận mạn")
	if got != "Suy thận mạn" {
		t.Errorf("Normalize(\"suy thận mạn\") = %q, want \"Suy thận mạn\"", got)
	}
}

func containsSubstr(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
