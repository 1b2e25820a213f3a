package accuracy

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "  \t \n ", []string{}},
		{"punctuation only", "?!... --", []string{}},
		{"simple sentence", "Hello World", []string{"hello", "world"}},
		{"punctuation stripped", "Hello, World!", []string{"hello", "world"}},
		{"contraction collapses", "Don't stop", []string{"dont", "stop"}},
		{"hyphen collapses", "well-known fact", []string{"wellknown", "fact"}},
		{"digits kept", "room 101", []string{"room", "101"}},
		{"repeated spaces", "  a   b  ", []string{"a", "b"}},
		{"accented letters kept", "Café au lait", []string{"café", "au", "lait"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Tokenize(tt.in)
			if got == nil {
				got = []string{}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize_PreservesOrder(t *testing.T) {
	t.Parallel()

	got := Tokenize("one, two; three. four")
	want := []string{"one", "two", "three", "four"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize order = %v, want %v", got, want)
	}
}
