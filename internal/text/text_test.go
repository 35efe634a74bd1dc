package text

import (
	"reflect"
	"testing"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Tokens
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "Hello, world! It's 2020.",
			want:  Tokens{"hello", "world", "it's", "2020"},
		},
		{
			name:  "drops punctuation-only tokens",
			input: "wait -- what",
			want:  Tokens{"wait", "what"},
		},
		{
			name:  "empty input",
			input: "   ",
			want:  Tokens{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Words(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Words(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeForMatrix(t *testing.T) {
	got := NormalizeForMatrix("The migrants were detained near the border.")
	want := "migrant detain near border"
	if got != want {
		t.Errorf("NormalizeForMatrix = %q, want %q", got, want)
	}
}

func TestRemoveStopWords(t *testing.T) {
	got := RemoveStopWords(Tokens{"the", "asylum", "office", "was", "closed"})
	want := Tokens{"asylum", "office", "closed"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveStopWords = %v, want %v", got, want)
	}
}

func TestUniquify(t *testing.T) {
	got := Uniquify(Tokens{"border", "wall", "border", "patrol", "wall"})
	want := Tokens{"border", "wall", "patrol"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Uniquify = %v, want %v", got, want)
	}
}

func TestProcessorOrder(t *testing.T) {
	p := NewProcessor(RemoveStopWords, Stem, Uniquify)
	got := p.Apply(Tokens{"the", "migrants", "and", "migrant"})
	want := Tokens{"migrant"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
}
