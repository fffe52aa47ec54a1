package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
)

// WaniKani's card palette.
const (
	colorRadical    = "#4193F1"
	colorKanji      = "#EB417D"
	colorVocabulary = "#9F5FBF"
)

// Mnemonics arrive with WaniKani markup tags; cards want inline HTML.
var (
	kanjiTag      = regexp.MustCompile(`<kanji>(.*?)</kanji>`)
	radicalTag    = regexp.MustCompile(`<radical>(.*?)</radical>`)
	vocabularyTag = regexp.MustCompile(`<vocabulary>(.*?)</vocabulary>`)
	readingTag    = regexp.MustCompile(`<reading>(.*?)</reading>`)
)

// ApplyTextStyling rewrites WaniKani markup into colored, bolded HTML spans.
func ApplyTextStyling(text string) string {
	text = kanjiTag.ReplaceAllString(text, `<span style="color: `+colorKanji+`;font-weight: bold;">$1</span>`)
	text = radicalTag.ReplaceAllString(text, `<span style="color: `+colorRadical+`;font-weight: bold;">$1</span>`)
	text = vocabularyTag.ReplaceAllString(text, `<span style="color: `+colorVocabulary+`;font-weight: bold;">$1</span>`)
	text = readingTag.ReplaceAllString(text, `<b>$1</b>`)
	return text
}

// BoldenPrimaryReading wraps the primary reading in <b> so it stands out in
// the reading list. Non-matching readings pass through untouched.
func BoldenPrimaryReading(readings []string, primary string) []string {
	out := make([]string, len(readings))
	for i, r := range readings {
		if r == primary && primary != "" {
			out[i] = "<b>" + r + "</b>"
		} else {
			out[i] = r
		}
	}
	return out
}

// NoteGUID derives a stable note identity from the subject id, so re-imports
// update existing notes instead of duplicating them.
func NoteGUID(id int64) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(id, 10)))
	return hex.EncodeToString(sum[:])[:10]
}
