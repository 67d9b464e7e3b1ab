package faq

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultK is the number of matches returned when the caller asks for none.
const DefaultK = 3

var ErrNoCorpus = errors.New("faq matcher has no corpus")

// tokens of two or more word characters, same as scikit-learn's default pattern
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Match is a corpus entry ranked against a query.
type Match struct {
	Entry
	Score float64 `json:"score"`
}

type sparseVector map[int]float64

// Matcher ranks corpus questions against free text by TF-IDF cosine similarity.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	entries []Entry
	vocab   map[string]int
	idf     []float64
	docs    []sparseVector
}

// NewMatcher fits the vocabulary and inverse document frequencies on the
// corpus questions.
func NewMatcher(entries []Entry) *Matcher {
	m := &Matcher{
		entries: entries,
		vocab:   make(map[string]int),
	}

	tokenized := make([][]string, len(entries))
	df := make(map[string]int)
	for i, e := range entries {
		tokens := tokenize(e.Question)
		tokenized[i] = tokens
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(entries))
	m.idf = make([]float64, len(terms))
	for i, term := range terms {
		m.vocab[term] = i
		// smoothed idf: ln((1+n)/(1+df)) + 1
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	m.docs = make([]sparseVector, len(entries))
	for i, tokens := range tokenized {
		m.docs[i] = m.vectorize(tokens)
	}

	return m
}

// Len returns the number of corpus entries.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Search returns the k entries most similar to query, best first, ties in
// corpus order. Entries are returned even when nothing in the query overlaps
// the vocabulary; minScore > 0 drops matches scoring below it.
func (m *Matcher) Search(query string, k int, minScore float64) ([]Match, error) {
	if m == nil {
		return nil, ErrNoCorpus
	}
	if k <= 0 {
		k = DefaultK
	}

	q := m.vectorize(tokenize(query))

	matches := make([]Match, len(m.entries))
	for i, e := range m.entries {
		score := dot(q, m.docs[i])
		if math.IsNaN(score) {
			return nil, errors.New("faq similarity score is not a number")
		}
		matches[i] = Match{Entry: e, Score: score}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k < len(matches) {
		matches = matches[:k]
	}

	if minScore > 0 {
		kept := matches[:0]
		for _, match := range matches {
			if match.Score >= minScore {
				kept = append(kept, match)
			}
		}
		matches = kept
	}

	return matches, nil
}

// vectorize builds an L2-normalised tf-idf vector, ignoring unknown terms.
func (m *Matcher) vectorize(tokens []string) sparseVector {
	vec := make(sparseVector)
	for _, tok := range tokens {
		if idx, ok := m.vocab[tok]; ok {
			vec[idx]++
		}
	}

	var norm float64
	for idx, tf := range vec {
		w := tf * m.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}

	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func dot(a, b sparseVector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		sum += w * b[idx]
	}
	return sum
}
