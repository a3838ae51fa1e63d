package util

import "testing"

func TestSnakeToTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"reaction_temperature", "Reaction Temperature"},
		{"yield", "Yield"},
		{"ph", "Ph"},
		{"", ""},
		{"double__underscore", "Double  Underscore"},
	}

	for _, tt := range tests {
		if got := SnakeToTitle(tt.in); got != tt.want {
			t.Errorf("SnakeToTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Reaction Temperature", "reaction_temperature"},
		{" Yield ", "yield"},
	}

	for _, tt := range tests {
		if got := TitleToSnake(tt.in); got != tt.want {
			t.Errorf("TitleToSnake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
