package report

import (
	"cmp"
	"slices"
	"strings"

	"github.com/chris00234/web-crawler/internal/model"
)

// excludedSubdomain is left out of the subdomain section.
const excludedSubdomain = "www"

// stopWords are never ranked among the most common words.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are", "arent", "as", "at",
		"be", "because", "been", "before", "being", "below", "between", "both", "but", "by", "can't", "cannot", "could",
		"couldnt", "did", "didn't", "do", "does", "doesnt", "doing", "dont", "down", "during", "each", "few", "for",
		"from", "further", "had", "hadnt", "has", "hasn't", "have", "havent", "having", "he", "hell", "hes",
		"her", "here", "heres", "hers", "herself", "him", "himself", "his", "how", "hows", "i", "id", "ill", "im",
		"ive", "if", "in", "into", "is", "isn", "it", "its", "itself", "lets", "me", "more", "most", "mustnt",
		"my", "myself", "no", "nor", "not", "of", "off", "on", "once", "only", "or", "other", "ought", "our", "ours",
		"ourselves", "out", "over", "own", "same", "shant", "she", "shed", "shell", "shes", "should", "shouldnt", "so",
		"some", "such", "than", "that", "the", "their", "theirs", "them", "themselves", "then", "there",
		"theres", "these", "they", "ll", "theyre", "this", "those", "through", "to", "too",
		"under", "until", "up", "very", "was", "wasnt", "we", "were", "we've", "weren", "what", "when", "whens",
		"where", "wheres", "which", "while", "who", "whos", "whom", "why", "whys", "with", "would", "you", "re", "ve",
		"r", "s", "t", "will", "wont",
	} {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether word is excluded from the top-word ranking.
// The comparison ignores case.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// TopWords returns up to n words of snap by descending frequency, stop
// words removed. Equal counts keep first-seen order. n <= 0 returns all.
func TopWords(snap *model.Snapshot, n int) []model.Count {
	words := make([]model.Count, 0, len(snap.Words))
	for _, c := range snap.Words {
		if !IsStopWord(c.Key) {
			words = append(words, c)
		}
	}
	return TopCounts(words, n)
}

// TopCounts returns a copy of counts stably sorted by descending count and
// cut to n entries. n <= 0 keeps all.
func TopCounts(counts []model.Count, n int) []model.Count {
	sorted := slices.Clone(counts)
	slices.SortStableFunc(sorted, func(a, b model.Count) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Subdomains returns the subdomain counts of snap in first-seen order,
// without the www label.
func Subdomains(snap *model.Snapshot) []model.Count {
	subs := make([]model.Count, 0, len(snap.Subdomains))
	for _, c := range snap.Subdomains {
		if c.Key != excludedSubdomain {
			subs = append(subs, c)
		}
	}
	return subs
}
