// Package rank provides the TF-IDF ranking engine used to answer questions over a corpus.
//
// Ranking happens in two passes over two separate universes:
//   - Files are ranked by summed TF-IDF against an IDF table computed over the whole corpus.
//   - Sentences from the winning files are ranked by summed IDF, with query term density
//     as the tiebreak, against an IDF table computed over those sentences only.
//
// Usage Example:
//
//	idfs, err := rank.ComputeIDF(fileTokens)
//	files, err := rank.TopFiles(query, fileTokens, idfs, 1)
//
// Every function in this package is a pure computation over its arguments. Tables are
// never cached, so each universe gets a freshly computed IDF table.
package rank

import (
	"errors"
	"log/slog"
	"math"
	"sort"
)

var (
	// ErrEmptyCollection is returned when an IDF table is requested for zero documents.
	ErrEmptyCollection = errors.New("document collection is empty")
	// ErrMissingIDF is returned when a query term present in a candidate has no IDF entry,
	// which means the table was built over a different universe.
	ErrMissingIDF = errors.New("no idf entry for term")
	// ErrInvalidCount is returned when fewer than one result is requested.
	ErrInvalidCount = errors.New("result count must be at least 1")
)

// IDF maps each token of one universe to its inverse document frequency.
type IDF map[string]float64

// Query is a set of normalized terms.
type Query map[string]struct{}

// NewQuery builds a query from tokens, collapsing duplicates.
func NewQuery(tokens []string) Query {
	q := make(Query, len(tokens))
	for _, token := range tokens {
		q[token] = struct{}{}
	}
	return q
}

// Terms returns the query terms in ascending order so that scores are summed
// in the same order on every run.
func (q Query) Terms() []string {
	terms := make([]string, 0, len(q))
	for term := range q {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// ComputeIDF computes idf(t) = ln(N / df(t)) for every token that appears in at least
// one of the documents, where N is the number of documents and df(t) the number of
// documents containing t.
//
// Parameters:
//   - docs: document identifier mapped to its token sequence
//
// Returns:
//   - IDF: one entry per distinct token in docs, and no others
//   - error: ErrEmptyCollection when docs is empty
//
// A token present in every document gets exactly 0.
func ComputeIDF(docs map[string][]string) (IDF, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCollection
	}

	docFrequencies := make(map[string]int)
	for _, tokens := range docs {
		seen := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			docFrequencies[token]++
		}
	}

	total := float64(len(docs))
	idfs := make(IDF, len(docFrequencies))
	for term, df := range docFrequencies {
		idfs[term] = math.Log(total / float64(df))
	}

	slog.Debug("IDF table computed", "documents", len(docs), "terms", len(idfs))
	return idfs, nil
}

// countTerms returns the number of occurrences of each token.
func countTerms(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}
