package patterns

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "tsc diagnostic",
			input: "src/a.ts(10,5): error TS2345: Type 'x' is not assignable",
			want:  "<file>:L:C: error TSN: Type <string> is not assignable",
		},
		{
			name:  "colon line and column",
			input: "./src/app/page.tsx:12:5 Type error: Cannot find name \"foo\".",
			want:  "<file>:L:C Type error: Cannot find name <string>.",
		},
		{
			name:  "backtick literal",
			input: "Export `default` is missing in components/Header.jsx",
			want:  "Export <string> is missing in <file>",
		},
		{
			name:  "json and css paths",
			input: "Failed to parse tsconfig.build.json and styles/globals.scss",
			want:  "Failed to parse <file> and <file>",
		},
		{
			name:  "plain numbers",
			input: "Build exceeded 300 seconds after 2 retries",
			want:  "Build exceeded N seconds after N retries",
		},
		{
			name:  "nothing to replace",
			input: "Module not found",
			want:  "Module not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_SameDiagnosticDifferentLocation(t *testing.T) {
	a := Normalize("src/a.ts(10,5): error TS2345: Type 'x' is not assignable")
	b := Normalize("src/b.ts(99,1): error TS2345: Type 'y' is not assignable")
	if a != b {
		t.Errorf("patterns differ:\n%q\n%q", a, b)
	}
}
