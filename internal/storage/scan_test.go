package storage

import "testing"

func TestHeaderEnd(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "empty", content: "", want: -1},
		{name: "no brace", content: "hello {}", want: -1},
		{name: "empty object", content: "{}", want: 2},
		{name: "object then body", content: "{\"a\":1}\n\nbody", want: 7},
		{name: "nested objects", content: `{"a":{"b":{}}} tail`, want: 14},
		{name: "brace in string", content: `{"t":"}{"} x`, want: 10},
		{name: "escaped quote", content: `{"t":"a\"}"} x`, want: 12},
		{name: "escaped backslash before quote", content: `{"t":"a\\"} x`, want: 11},
		{name: "unbalanced", content: `{"t":"x"`, want: -1},
		{name: "unterminated string", content: `{"t":"}`, want: -1},
		{name: "array of objects", content: `{"s":[{"id":1},{"id":2}]}`, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headerEnd(tt.content); got != tt.want {
				t.Errorf("headerEnd(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}
