package lookup

import "testing"

func TestMinLengthPolicy(t *testing.T) {
	policy := MinLengthPolicy(3)

	tests := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{"no values", nil, false},
		{"long value", map[string]string{"last_name": "smith"}, false},
		{"short value", map[string]string{"last_name": "li"}, true},
		{"exactly min length", map[string]string{"last_name": "lee"}, false},
		{"all short", map[string]string{"first_name": "jo", "last_name": "li"}, true},
		{"one long value keeps wildcard", map[string]string{"first_name": "jo", "last_name": "smith"}, false},
		{"wildcard character", map[string]string{"last_name": "sm%th"}, true},
		{"underscore", map[string]string{"last_name": "o_brien"}, true},
		{"multibyte counts runes", map[string]string{"last_name": "Øye"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy(tt.values); got != tt.want {
				t.Errorf("MinLengthPolicy(3)(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestNeverStrict(t *testing.T) {
	if NeverStrict(map[string]string{"last_name": "x"}) {
		t.Error("NeverStrict should never narrow a lookup")
	}
}
