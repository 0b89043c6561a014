package preprocess

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/adinote/adinote/internal/model"
	"golang.org/x/text/unicode/norm"
)

// Unit token spellings folded to one canonical form. The vital-sign
// matchers downstream only need to know the canonical spelling.
var unitFolds = []struct {
	re        *regexp.Regexp
	canonical string
}{
	{regexp.MustCompile(`(?i)°\s*c\b`), "°C"},
	{regexp.MustCompile(`(?i)\bgradi\s+centigradi\b`), "°C"},
	{regexp.MustCompile(`(?i)\bmm\s*hg\b`), "mmHg"},
	{regexp.MustCompile(`(?i)\bb\.?p\.?m\.?\b`), "bpm"},
	{regexp.MustCompile(`(?i)\bbatt/min\b`), "bpm"},
}

var spaceRun = regexp.MustCompile(`[ \t]+`)

// Preprocess cleans a raw dictation and segments it for the extractors.
// It is deterministic and side-effect-free. The only failure is
// MalformedInputError for empty or non-textual input; anything else
// degrades to best-effort segmentation.
func Preprocess(recordID, raw string) (*model.PreprocessedText, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &model.MalformedInputError{RecordID: recordID, Reason: "empty text"}
	}
	if !utf8.ValidString(raw) {
		return nil, &model.MalformedInputError{RecordID: recordID, Reason: "invalid UTF-8"}
	}

	text := norm.NFC.String(raw)
	text = stripControl(text)
	for _, f := range unitFolds {
		text = f.re.ReplaceAllString(text, f.canonical)
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}

	if !hasTextContent(lines) {
		return nil, &model.MalformedInputError{RecordID: recordID, Reason: "no textual content"}
	}

	cleaned := strings.Join(lines, "\n")

	return &model.PreprocessedText{
		Text:      cleaned,
		Lines:     lines,
		Sentences: splitSentences(cleaned),
	}, nil
}

// stripControl removes control characters except newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// hasTextContent reports whether any line carries a letter or digit.
func hasTextContent(lines []string) bool {
	for _, line := range lines {
		for _, r := range line {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return true
			}
		}
	}
	return false
}

// splitSentences segments on clinical punctuation. Dictations use short
// telegraphic sentences, so a terminator-based split is enough; decimal
// numbers like 36.5 are kept intact by requiring a non-digit after the dot.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		s = strings.TrimRight(s, ".!?;")
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		switch r {
		case '\n', ';', '!', '?':
			flush()
		case '.':
			if i+1 < len(runes) && unicode.IsDigit(runes[i+1]) && i > 0 && unicode.IsDigit(runes[i-1]) {
				current.WriteRune(r)
			} else {
				flush()
			}
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return sentences
}
