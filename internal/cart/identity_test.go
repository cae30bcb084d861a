package cart

import "testing"

func TestLineID(t *testing.T) {
	tests := []struct {
		product, length, want string
	}{
		{"01J9WIG", "", "01J9WIG"},
		{"01J9WIG", "16", "01J9WIG-16"},
		{"01J9WIG", "16 inches", "01J9WIG-16"},
		{"01J9WIG", "  ", "01J9WIG"},
	}
	for _, tt := range tests {
		if got := LineID(tt.product, tt.length); got != tt.want {
			t.Fatalf("LineID(%q, %q) = %q, want %q", tt.product, tt.length, got, tt.want)
		}
		if got := BaseID(LineID(tt.product, tt.length)); got != tt.product {
			t.Fatalf("BaseID round trip for %q gave %q", tt.product, got)
		}
	}
	if got := BaseID("01J9WIG-16-extra"); got != "01J9WIG" {
		t.Fatalf("BaseID splits at first dash, got %q", got)
	}
}
