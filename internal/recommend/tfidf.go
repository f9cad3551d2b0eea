package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// matrix holds L2-normalised TF-IDF rows over a vocabulary built from a
// single corpus.
type matrix struct {
	vocab []string
	rows  [][]float64
}

// tokenize splits normalised text into terms of at least two runes.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	terms := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

// vectorize builds the TF-IDF matrix for docs. Term frequency is the raw
// count and idf is smoothed: ln((1+n)/(1+df)) + 1.
func vectorize(docs []string) matrix {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, term := range tokenize(doc) {
			if counts[i][term] == 0 {
				df[term]++
			}
			counts[i][term]++
		}
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for j, term := range vocab {
		idf[j] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i := range docs {
		row := make([]float64, len(vocab))
		var norm float64
		for j, term := range vocab {
			if c := counts[i][term]; c > 0 {
				row[j] = float64(c) * idf[j]
				norm += row[j] * row[j]
			}
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		rows[i] = row
	}

	return matrix{vocab: vocab, rows: rows}
}

// cosine returns the cosine similarity of two equal-length vectors, or 0
// when either is all zeros.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
