package nfe

import (
	"strings"
	"testing"
)

func TestParseAccessKey(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		wantError     bool
		expectedError string
	}{
		{"valid PR key", "41240112345678000199550010000001231000000016", false, ""},
		{"valid SP key", "35230300000000000001550010000000011000000004", false, ""},
		{"too short", "4124011234567800019955001000000123100000001", true, "44 dígitos"},
		{"too long", "412401123456780001995500100000012310000000160", true, "44 dígitos"},
		{"non digit", "41240112345678000199550010000001231000000O16", true, "caractere inválido"},
		{"wrong check digit", "41240112345678000199550010000001231000000017", true, "dígito verificador"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseAccessKey(tt.key)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.expectedError)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if key.CheckDigit != AccessKeyCheckDigit(tt.key[:43]) {
				t.Errorf("CheckDigit = %d", key.CheckDigit)
			}
		})
	}
}

func TestParseAccessKeyFields(t *testing.T) {
	key, err := ParseAccessKey("41240112345678000199550010000001231000000016")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := map[string][2]string{
		"UFCode":       {key.UFCode, "41"},
		"UF":           {key.UF(), "PR"},
		"YearMonth":    {key.YearMonth, "2401"},
		"IssuerCNPJ":   {key.IssuerCNPJ, "12345678000199"},
		"Model":        {key.Model, "55"},
		"Series":       {key.Series, "001"},
		"Number":       {key.Number, "000000123"},
		"EmissionType": {key.EmissionType, "1"},
		"RandomCode":   {key.RandomCode, "00000001"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
	if key.CheckDigit != 6 {
		t.Errorf("CheckDigit = %d, want 6", key.CheckDigit)
	}
}
