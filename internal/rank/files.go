package rank

import (
	"fmt"
	"log/slog"
)

// FileScore pairs a file identifier with its summed TF-IDF score.
type FileScore struct {
	ID    string
	Score float64
}

// RankFiles scores every file against the query and returns the n best, highest first.
//
// Parameters:
//   - query: normalized query terms
//   - files: file identifier mapped to its token sequence
//   - idfs: IDF table computed over exactly these files
//   - n: number of results wanted (capped to len(files))
//
// Returns:
//   - []FileScore: best files first
//   - error: ErrInvalidCount for n < 1, ErrMissingIDF if idfs lacks a term found in a file
//
// The score of a file is the sum over query terms t present in it of tf(t) * idf(t),
// where tf(t) is the count of t divided by the file's token count. Files with equal
// scores are ordered by identifier ascending.
func RankFiles(query Query, files map[string][]string, idfs IDF, n int) ([]FileScore, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}

	terms := query.Terms()
	scores := make([]FileScore, 0, len(files))
	for id, tokens := range files {
		score, err := tfidfScore(terms, tokens, idfs)
		if err != nil {
			return nil, fmt.Errorf("failed to score file %q: %w", id, err)
		}
		scores = append(scores, FileScore{ID: id, Score: score})
	}

	top := selectTop(scores, n, fileRanksBelow)
	slog.Debug("Files ranked", "candidates", len(files), "queryTerms", len(terms), "returned", len(top))
	return top, nil
}

// TopFiles returns the identifiers of the n best files for the query. See RankFiles.
func TopFiles(query Query, files map[string][]string, idfs IDF, n int) ([]string, error) {
	ranked, err := RankFiles(query, files, idfs, n)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	return ids, nil
}

// tfidfScore sums tf * idf over the terms that occur in tokens.
func tfidfScore(terms []string, tokens []string, idfs IDF) (float64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}

	counts := countTerms(tokens)
	length := float64(len(tokens))

	var total float64
	for _, term := range terms {
		count := counts[term]
		if count == 0 {
			continue // term not in file
		}

		idf, ok := idfs[term]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrMissingIDF, term)
		}

		tf := float64(count) / length
		total += tf * idf
		slog.Debug("TF-IDF term", "term", term, "tf", tf, "idf", idf)
	}
	return total, nil
}

func fileRanksBelow(a, b FileScore) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.ID > b.ID
}
