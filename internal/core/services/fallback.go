package services

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	fallbackPrefix   = "Based on the document: "
	fallbackNoAnswer = "I couldn't find specific information about this in the document."
)

var (
	fallbackParagraphBreak = regexp.MustCompile(`\n\s*\n`)

	stopWords = map[string]struct{}{
		"what": {}, "mean": {}, "by": {}, "the": {}, "this": {}, "that": {}, "which": {},
	}
)

// KeywordFallback answers without AI: it returns the paragraph of content
// sharing the most distinct keywords with the question. Ties go to the
// earliest paragraph.
func KeywordFallback(content, question string) string {
	keywords := Keywords(question)
	if len(keywords) == 0 {
		return fallbackNoAnswer
	}

	best, bestScore := "", 0
	for _, raw := range fallbackParagraphBreak.Split(content, -1) {
		para := strings.TrimSpace(raw)
		if para == "" {
			continue
		}

		lower := strings.ToLower(para)
		score := 0
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = para, score
		}
	}

	if bestScore == 0 {
		return fallbackNoAnswer
	}
	return fallbackPrefix + best
}

// Keywords lower-cases the question, trims punctuation from each word and
// keeps distinct words longer than three characters that are not stop words.
func Keywords(question string) []string {
	seen := make(map[string]struct{})
	var keywords []string

	for _, word := range strings.Fields(strings.ToLower(question)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len([]rune(word)) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	return keywords
}
