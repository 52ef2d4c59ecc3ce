package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// featureSynonyms collapses featuring-artist variants to a single token.
// Applied token-wise after punctuation stripping, so "feat." and "ft." reduce
// to their bare forms before lookup and words merely containing "ft" are untouched.
var featureSynonyms = map[string]string{
	"feat":      "feat",
	"ft":        "feat",
	"featuring": "feat",
}

// versionVocabulary is the fixed set of version qualifiers recognized in titles.
var versionVocabulary = map[string]struct{}{
	"live":         {},
	"remaster":     {},
	"remastered":   {},
	"acoustic":     {},
	"instrumental": {},
	"karaoke":      {},
	"mono":         {},
	"stereo":       {},
	"explicit":     {},
	"clean":        {},
	"edit":         {},
	"radio":        {},
}

// Normalize canonicalizes free-text track metadata for comparison.
//
// The pipeline is a fixed ordered sequence of pure stages: Unicode-fold
// (diacritics and case removed, so "Rosalía" and "ROSALIA" compare equal),
// strip every rune that is not a letter, digit, or whitespace to a single
// space, collapse whitespace runs, trim, then map featuring-synonym tokens
// ("feat.", "ft", "featuring", ...) to the single token "feat".
//
// Normalize is total and idempotent; empty input yields empty output.
func Normalize(text string) string {
	folded := foldText(text)
	stripped := stripPunctuation(folded)
	return collapseSynonyms(stripped)
}

// Tokenize normalizes text and splits it into a set of unique word tokens.
// Empty normalized text yields an empty set.
func Tokenize(text string) map[string]struct{} {
	normalized := Normalize(text)
	if normalized == "" {
		return map[string]struct{}{}
	}

	tokens := map[string]struct{}{}
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

// ExtractVersionTags returns the version qualifiers present in a title,
// restricted to the fixed vocabulary (live, remaster, acoustic, ...).
func ExtractVersionTags(title string) map[string]struct{} {
	tags := map[string]struct{}{}
	for tok := range Tokenize(title) {
		if _, ok := versionVocabulary[tok]; ok {
			tags[tok] = struct{}{}
		}
	}
	return tags
}

// TokenSetSimilarity computes the Jaccard index of the two token sets in [0,1].
//
// If both inputs tokenize to the empty set the result is 0: there is no union
// to divide by. Callers comparing fields where mutual absence counts as
// agreement must substitute a parity score instead (see version-tag parity).
func TokenSetSimilarity(a, b string) float64 {
	return jaccard(Tokenize(a), Tokenize(b))
}

// jaccard is intersection over union; empty union yields 0.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// foldText removes diacritics via NFKD decomposition, drops combining marks,
// and lowercases the result.
func foldText(text string) string {
	decomposed := norm.NFKD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.ToLower(b.String())
}

// stripPunctuation replaces every rune that is not a letter, digit, or
// whitespace with a single space, then collapses whitespace runs and trims.
func stripPunctuation(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// collapseSynonyms maps each whitespace-delimited token through the
// featuring-synonym table, leaving unknown tokens untouched.
func collapseSynonyms(text string) string {
	if text == "" {
		return ""
	}

	fields := strings.Fields(text)
	for i, tok := range fields {
		if canonical, ok := featureSynonyms[tok]; ok {
			fields[i] = canonical
		}
	}
	return strings.Join(fields, " ")
}
