package textfold

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Łukasz", "lukasz"},
		{"ŻÓŁĆ", "zolc"},
		{"  Anna   Maria ", "anna maria"},
		{"Müller", "muller"},
		{"Gęślą jaźń", "gesla jazn"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("Paweł Wojciechowski", "PAWEL WOJCIECHOWSKI") {
		t.Error("Equal() = false for diacritic/case variants, want true")
	}
	if Equal("Kowalski", "Kowalska") {
		t.Error("Equal() = true for different names, want false")
	}
}
