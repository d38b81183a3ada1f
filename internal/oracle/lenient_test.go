package oracle

import "testing"

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"found_pii": false}`,
			want: `{"found_pii": false}`,
		},
		{
			name: "surrounding prose",
			in:   `Sure! Here you go: {"a": 1} Hope that helps.`,
			want: `{"a": 1}`,
		},
		{
			name: "code fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "nested braces",
			in:   `noise {"a": {"b": [1, 2]}} trailing`,
			want: `{"a": {"b": [1, 2]}}`,
		},
		{
			name: "brace inside string",
			in:   `{"text": "curly } inside"}`,
			want: `{"text": "curly } inside"}`,
		},
		{
			name: "escaped quote inside string",
			in:   `{"text": "she said \"}\" loudly"}`,
			want: `{"text": "she said \"}\" loudly"}`,
		},
		{
			name: "no object",
			in:   "just prose, no JSON here",
			want: "",
		},
		{
			name: "unbalanced",
			in:   `{"a": 1`,
			want: "",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractJSONObject(tc.in)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
