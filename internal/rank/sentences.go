package rank

import (
	"fmt"
	"log/slog"
)

// SentenceScore holds the two ranking keys of a sentence.
type SentenceScore struct {
	ID      string
	IDFSum  float64 // sum of idf over query terms present in the sentence
	Density float64 // query term density: sum of count/length over the same terms
}

// RankSentences scores every sentence against the query and returns the n best.
//
// Sentences are ordered by IDFSum descending, then Density descending, then identifier
// ascending. A higher IDFSum always wins regardless of Density.
//
// idfs must be computed over these sentences, not over the files they came from.
func RankSentences(query Query, sentences map[string][]string, idfs IDF, n int) ([]SentenceScore, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}

	terms := query.Terms()
	scores := make([]SentenceScore, 0, len(sentences))
	for id, tokens := range sentences {
		score, err := scoreSentence(terms, tokens, idfs)
		if err != nil {
			return nil, fmt.Errorf("failed to score sentence %q: %w", id, err)
		}
		score.ID = id
		scores = append(scores, score)
	}

	top := selectTop(scores, n, sentenceRanksBelow)
	slog.Debug("Sentences ranked", "candidates", len(sentences), "queryTerms", len(terms), "returned", len(top))
	return top, nil
}

// TopSentences returns the n best sentences for the query. See RankSentences.
func TopSentences(query Query, sentences map[string][]string, idfs IDF, n int) ([]string, error) {
	ranked, err := RankSentences(query, sentences, idfs, n)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	return ids, nil
}

func scoreSentence(terms []string, tokens []string, idfs IDF) (SentenceScore, error) {
	var score SentenceScore
	if len(tokens) == 0 {
		return score, nil
	}

	counts := countTerms(tokens)
	length := float64(len(tokens))

	for _, term := range terms {
		count := counts[term]
		if count == 0 {
			continue
		}

		idf, ok := idfs[term]
		if !ok {
			return SentenceScore{}, fmt.Errorf("%w %q", ErrMissingIDF, term)
		}

		score.IDFSum += idf
		score.Density += float64(count) / length
	}
	return score, nil
}

func sentenceRanksBelow(a, b SentenceScore) bool {
	if a.IDFSum != b.IDFSum {
		return a.IDFSum < b.IDFSum
	}
	if a.Density != b.Density {
		return a.Density < b.Density
	}
	return a.ID > b.ID
}
