package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

const (
	paragraphSep = "\n\n"
	sentenceSep  = " "
)

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n+`)
	sentenceBreak  = regexp.MustCompile(`[.!?]\s+`)
)

// Split divides text into ordered, size-bounded segments.
//
// Paragraphs (separated by blank lines) are packed into a buffer until the
// next one would push it past MaxChars. A paragraph longer than MaxChars is
// packed sentence by sentence, and a sentence longer than MaxChars is cut
// into MaxChars-sized slices. Lengths are counted in runes.
//
// Split is a pure function of its arguments.
func Split(text string, opts domain.ChunkOptions) []domain.Segment {
	opts = opts.WithDefaults()
	s := &splitter{
		maxChars: opts.MaxChars,
		minChars: opts.MinChars,
		overlap:  opts.OverlapChars(),
	}

	for _, para := range Paragraphs(text) {
		if runeLen(para) > s.maxChars {
			s.addLongParagraph(para)
			continue
		}
		s.addParagraph(para)
	}
	s.flush()

	return s.segments
}

// Paragraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func Paragraphs(text string) []string {
	parts := paragraphBreak.Split(text, -1)
	paras := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// Sentences splits a paragraph after '.', '!' or '?' followed by whitespace.
func Sentences(para string) []string {
	var sents []string
	start := 0
	for _, m := range sentenceBreak.FindAllStringIndex(para, -1) {
		if s := strings.TrimSpace(para[start : m[0]+1]); s != "" {
			sents = append(sents, s)
		}
		start = m[1]
	}
	if s := strings.TrimSpace(para[start:]); s != "" {
		sents = append(sents, s)
	}
	return sents
}

// EstimateTokens returns ceil(runes/4), at least 1.
func EstimateTokens(text string) int {
	n := (runeLen(text) + 3) / 4
	if n < 1 {
		return 1
	}
	return n
}

type splitter struct {
	maxChars int
	minChars int
	overlap  int

	current  string
	segments []domain.Segment
}

func (s *splitter) addParagraph(para string) {
	if !s.exceeds(para, paragraphSep) {
		s.current = join(s.current, para, paragraphSep)
		return
	}

	// Buffer too small to stand alone: accept the overflow.
	if runeLen(s.current) < s.minChars {
		s.current = join(s.current, para, paragraphSep)
		s.flush()
		return
	}

	s.flush()
	s.current = runePrefix(para, s.overlap)

	if s.exceeds(para, paragraphSep) {
		s.current = join(s.current, para, paragraphSep)
		s.flush()
		return
	}
	s.current = join(s.current, para, paragraphSep)
}

func (s *splitter) addLongParagraph(para string) {
	for _, sent := range Sentences(para) {
		if !s.exceeds(sent, sentenceSep) {
			s.current = join(s.current, sent, sentenceSep)
			continue
		}

		if runeLen(sent) > s.maxChars {
			s.flush()
			for _, slice := range hardSplit(sent, s.maxChars) {
				s.emitVerbatim(slice)
			}
			continue
		}

		if runeLen(s.current) >= s.minChars {
			s.flush()
			s.current = sent
			continue
		}

		s.current = join(s.current, sent, sentenceSep)
		s.flush()
	}
}

// exceeds reports whether appending next to the buffer would pass maxChars.
func (s *splitter) exceeds(next, sep string) bool {
	return runeLen(strings.TrimSpace(join(s.current, next, sep))) > s.maxChars
}

func (s *splitter) flush() {
	text := strings.TrimSpace(s.current)
	s.current = ""
	if text == "" {
		return
	}
	s.segments = append(s.segments, domain.Segment{Text: text, TokensApprox: EstimateTokens(text)})
}

// emitVerbatim appends one hard-split slice, trimmed.
func (s *splitter) emitVerbatim(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.segments = append(s.segments, domain.Segment{Text: text, TokensApprox: EstimateTokens(text)})
}

func join(buf, next, sep string) string {
	if buf == "" {
		return next
	}
	return buf + sep + next
}

func hardSplit(text string, size int) []string {
	runes := []rune(text)
	slices := make([]string, 0, len(runes)/size+1)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		slices = append(slices, string(runes[i:end]))
	}
	return slices
}

func runePrefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if n >= len(runes) {
		return text
	}
	return string(runes[:n])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
