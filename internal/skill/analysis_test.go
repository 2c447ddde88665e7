package skill

import (
	"fmt"
	"slices"
	"strings"
	"testing"
)

func repeatWords(pairs ...any) string {
	var words []string
	for i := 0; i < len(pairs); i += 2 {
		word := pairs[i].(string)
		n := pairs[i+1].(int)
		for j := 0; j < n; j++ {
			words = append(words, word)
		}
	}
	return strings.Join(words, " ")
}

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello,", "hello"},
		{"HELLO.", "hello"},
		{"wh?at!", "what"},
		{"e.g.,", "eg"},
		{"\tTabbed\n", "tabbed"},
		{"...", ""},
		{"it's", "it's"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeWord(tt.in); got != tt.want {
			t.Errorf("NormalizeWord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountWordsKeepsFirstSeenOrder(t *testing.T) {
	counts := CountWords("b b a a")
	want := []WordCount{{Word: "b", Count: 2}, {Word: "a", Count: 2}}
	if !slices.Equal(counts, want) {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	ranked := MostCommon(counts, TopN)
	if ranked[0].Word != "b" || ranked[1].Word != "a" {
		t.Fatalf("ties must keep first-seen order, got %+v", ranked)
	}
}

func TestCountWordsSplitsOnSingleSpaces(t *testing.T) {
	counts := CountWords("hello  world")
	want := []WordCount{{Word: "hello", Count: 1}, {Word: "", Count: 1}, {Word: "world", Count: 1}}
	if !slices.Equal(counts, want) {
		t.Fatalf("expected empty token between double spaces, got %+v", counts)
	}

	counts = CountWords("line\nbreak")
	if len(counts) != 1 || counts[0].Word != "line\nbreak" {
		t.Fatalf("only single spaces split tokens, got %+v", counts)
	}
}

func TestMostCommonOrdersByCountThenFirstSeen(t *testing.T) {
	counts := []WordCount{{"x", 1}, {"y", 3}, {"z", 1}, {"w", 3}, {"v", 2}}
	ranked := MostCommon(counts, 3)
	want := []WordCount{{"y", 3}, {"w", 3}, {"v", 2}}
	if !slices.Equal(ranked, want) {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
	if counts[0].Word != "x" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestTopWordsNormalizesPunctuationAndCase(t *testing.T) {
	counts := CountWords("Hello, hello! HELLO.")
	if len(counts) != 1 || counts[0] != (WordCount{Word: "hello", Count: 3}) {
		t.Fatalf("expected hello x3, got %+v", counts)
	}

	got := TopWords("Hello, hello! HELLO.", DefaultStopwords())
	if !slices.Equal(got, []string{"hello"}) {
		t.Fatalf("expected [hello], got %v", got)
	}
}

func TestTopWordsTieBreakingIsFirstSeen(t *testing.T) {
	got := TopWords("bb bb aa aa", DefaultStopwords())
	if !slices.Equal(got, []string{"bb", "aa"}) {
		t.Fatalf("expected [bb aa], got %v", got)
	}
}

func TestTopWordsDropsShortWordsAndStopwords(t *testing.T) {
	got := TopWords("The cat and a dog x  the cat", DefaultStopwords())
	if !slices.Equal(got, []string{"cat", "dog"}) {
		t.Fatalf("expected [cat dog], got %v", got)
	}
}

func TestTopWordsDoesNotBackfillAfterFiltering(t *testing.T) {
	text := repeatWords(
		"the", 20, "and", 19, "of", 18, "to", 17, "in", 16,
		"is", 15, "it", 14, "that", 13, "alpha", 12, "beta", 11,
		"gamma", 5, "delta", 4,
	)

	got := TopWords(text, DefaultStopwords())
	if !slices.Equal(got, []string{"alpha", "beta"}) {
		t.Fatalf("expected only [alpha beta], got %v", got)
	}
}

func TestTopWordsCapsAtTen(t *testing.T) {
	var words []string
	for i := 0; i < 15; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}

	got := TopWords(strings.Join(words, " "), DefaultStopwords())
	if len(got) != TopN {
		t.Fatalf("expected %d words, got %d: %v", TopN, len(got), got)
	}
	if got[0] != "word00" || got[9] != "word09" {
		t.Fatalf("expected first-seen order, got %v", got)
	}
}

func TestTopWordsProperties(t *testing.T) {
	texts := []string{
		"Search indexes store documents. Indexers pull documents from datasources!",
		"a b c d e f g h i j k l m n o p",
		"I think, therefore I am. Am I? I am!",
		"Ünïcode wörds and ÜNÏCODE WÖRDS",
	}

	stopwords := DefaultStopwords()
	for _, text := range texts {
		first := TopWords(text, stopwords)
		if len(first) > TopN {
			t.Errorf("%q: more than %d words: %v", text, TopN, first)
		}
		for _, word := range first {
			if len([]rune(word)) < 2 {
				t.Errorf("%q: short word %q survived", text, word)
			}
			if stopwords.Contains(word) {
				t.Errorf("%q: stopword %q survived", text, word)
			}
		}
		if second := TopWords(text, stopwords); !slices.Equal(first, second) {
			t.Errorf("%q: results differ between runs: %v vs %v", text, first, second)
		}
	}
}

func TestTopWordsEmptyText(t *testing.T) {
	got := TopWords("", DefaultStopwords())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestStopwordSetNormalizesInput(t *testing.T) {
	set := NewStopwordSet([]string{" Foo ", "BAR"})
	if !set.Contains("foo") || !set.Contains("bar") {
		t.Fatalf("expected normalized stopwords")
	}
	if set.Contains("Foo") {
		t.Fatalf("lookups are exact")
	}
	if DefaultStopwords().Len() != len(englishStopwords) {
		t.Fatalf("expected %d default stopwords, got %d", len(englishStopwords), DefaultStopwords().Len())
	}
}
