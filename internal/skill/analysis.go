package skill

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// TopN is the number of ranked words considered before filtering.
const TopN = 10

// englishStopwords are excluded from top-word output regardless of frequency.
var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your",
	"yours", "yourself", "yourselves", "he", "him", "his", "himself", "she", "her", "hers",
	"herself", "it", "its", "itself", "they", "them", "their", "theirs", "themselves", "what",
	"which", "who", "whom", "this", "that", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do",
	"does", "did", "doing", "a", "an", "the", "and", "but", "if", "or",
	"because", "as", "until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before", "after", "above", "below", "to",
	"from", "up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "then", "once", "here", "there", "when", "where", "why", "how", "all",
	"any", "both", "each", "few", "more", "most", "other", "some", "such", "no",
	"nor", "not", "only", "own", "same", "so", "than", "too", "very", "s",
	"t", "can", "will", "just", "don", "should", "now",
}

// defaultStopwords is built once and only read afterwards.
var defaultStopwords = NewStopwordSet(englishStopwords)

// punctuation lists the characters removed from every token, wherever they occur.
var punctuation = strings.NewReplacer(".", "", ",", "", "!", "", "?", "")

// StopwordSet is an immutable lookup of words to drop.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet constructs a set holding the lowercased, trimmed words.
func NewStopwordSet(words []string) StopwordSet {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[strings.ToLower(strings.TrimSpace(word))] = struct{}{}
	}
	return StopwordSet{words: set}
}

// DefaultStopwords returns the built-in English stopword set.
func DefaultStopwords() StopwordSet {
	return defaultStopwords
}

// Contains reports whether word is a stopword.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Len returns the number of stopwords in the set.
func (s StopwordSet) Len() int {
	return len(s.words)
}

// WordCount is one row of the per-invocation frequency table.
type WordCount struct {
	Word  string
	Count int
}

// NormalizeWord strips . , ! ? anywhere in the token, lowercases it, and trims surrounding whitespace.
func NormalizeWord(token string) string {
	return strings.TrimSpace(strings.ToLower(punctuation.Replace(token)))
}

// CountWords splits text on single spaces and counts normalized tokens.
// Rows are returned in the order each word was first seen. Runs of spaces yield empty tokens,
// which are counted like any other word.
func CountWords(text string) []WordCount {
	positions := make(map[string]int)
	var counts []WordCount

	for _, token := range strings.Split(text, " ") {
		word := NormalizeWord(token)
		if idx, seen := positions[word]; seen {
			counts[idx].Count++
			continue
		}
		positions[word] = len(counts)
		counts = append(counts, WordCount{Word: word, Count: 1})
	}
	return counts
}

// MostCommon returns up to n rows ordered by descending count. Equal counts keep first-seen order.
func MostCommon(counts []WordCount, n int) []WordCount {
	ranked := slices.Clone(counts)
	slices.SortStableFunc(ranked, func(a, b WordCount) int {
		return b.Count - a.Count
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopWords ranks the words of text, keeps the TopN most frequent, then drops
// single-character words and stopwords from that selection. Dropped slots are not refilled.
func TopWords(text string, stopwords StopwordSet) []string {
	top := make([]string, 0, TopN)
	for _, wc := range MostCommon(CountWords(text), TopN) {
		if utf8.RuneCountInString(wc.Word) <= 1 {
			continue
		}
		if stopwords.Contains(wc.Word) {
			continue
		}
		top = append(top, wc.Word)
	}
	return top
}
