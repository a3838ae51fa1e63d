package ai

import (
	"testing"
)

func TestUnmarshalFlexible_Variants(t *testing.T) {
	type candidate struct {
		VariableName string `json:"variableName"`
		Likelihood   string `json:"likelihood,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  candidate
	}{
		{
			name:  "valid json object",
			input: `{"variableName":"reaction_temperature"}`,
			want:  candidate{VariableName: "reaction_temperature"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{variableName: 'reaction_temperature'}`,
			want:  candidate{VariableName: "reaction_temperature"},
		},
		{
			name:  "trailing comma",
			input: `{"variableName":"reaction_temperature",}`,
			want:  candidate{VariableName: "reaction_temperature"},
		},
		{
			name:  "missing endbracket",
			input: `{"variableName":"reaction_temperature`,
			want:  candidate{VariableName: "reaction_temperature"},
		},
		{
			name:  "stringified object",
			input: `"{\"variableName\": \"reaction_temperature\", \"likelihood\": \"high\"}"`,
			want:  candidate{VariableName: "reaction_temperature", Likelihood: "high"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"variableName\": \"reaction_temperature\"\n}\n",
			want:  candidate{VariableName: "reaction_temperature"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got candidate
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	var got struct {
		VariableName string `json:"variableName"`
	}
	if err := UnmarshalFlexible("sure, here is the JSON", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  reaction_temperature ", "reaction_temperature"},
		{"reaction\ntemperature", "reaction temperature"},
		{"reaction \r\n  temperature", "reaction temperature"},
		{"   ", ""},
	}

	for _, tc := range tests {
		if got := NormalizeName(tc.input); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
