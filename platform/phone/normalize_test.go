package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"us national format", "(212) 555-0123", "+12125550123"},
		{"already e164", "+12125550123", "+12125550123"},
		{"international with country code", "+31 20 794 0000", "+31207940000"},
		{"whitespace trimmed", "  +12125550123  ", "+12125550123"},
		{"empty stays empty", "", ""},
		{"garbage passes through", "call the front desk", "call the front desk"},
		{"invalid number passes through trimmed", " 12 ", "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input); got != tt.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
