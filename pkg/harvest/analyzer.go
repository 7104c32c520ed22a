package harvest

import (
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Word is a vocabulary item with its occurrence count within a harvest.
type Word struct {
	Text  string
	Count int
}

// Analyzer extracts vocabulary words from sentences. Japanese locales get a
// morphological tokenizer; everything else uses a plain letter scanner.
type Analyzer struct {
	t        *tokenizer.Tokenizer
	japanese bool
}

// NewAnalyzer creates an analyzer for the given locale (e.g. "en_US",
// "ja_JP"). The kagome dictionary is only loaded for Japanese locales.
func NewAnalyzer(locale string) (*Analyzer, error) {
	lang := locale
	if i := strings.IndexAny(locale, "_-"); i >= 0 {
		lang = locale[:i]
	}
	if lang != "ja" {
		return &Analyzer{}, nil
	}
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t, japanese: true}, nil
}

// Words returns the vocabulary words of a sentence in order of appearance.
// Duplicates within the sentence repeat in the result; aggregation happens
// at the harvest level.
func (a *Analyzer) Words(sentence string) []string {
	if a.japanese {
		return a.japaneseWords(sentence)
	}
	return latinWords(sentence)
}

// japaneseWords tokenizes with kagome, filtering particles, auxiliaries,
// symbols, and numbers, and normalizing each token to its dictionary form.
func (a *Analyzer) japaneseWords(sentence string) []string {
	var words []string
	for _, token := range a.t.Tokenize(sentence) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}

		features := token.Features()
		if len(features) > 0 {
			switch features[0] {
			case "記号", "補助記号", "助詞", "助動詞":
				continue
			}
		}
		if len(features) > 1 && features[1] == "数" {
			continue
		}

		word := token.Surface
		// IPA feature 6 is the base form (lemma).
		if len(features) > 6 && features[6] != "*" {
			word = features[6]
		}
		words = append(words, word)
	}
	return words
}

// latinWords lowercases and splits on anything that is not a letter, a
// digit, or an in-word apostrophe.
func latinWords(sentence string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		w := strings.Trim(current.String(), "'")
		current.Reset()
		if w == "" {
			return
		}
		// Pure numbers are not vocabulary.
		numeric := true
		for _, r := range w {
			if !unicode.IsDigit(r) {
				numeric = false
				break
			}
		}
		if !numeric {
			words = append(words, w)
		}
	}

	for _, r := range sentence {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(unicode.ToLower(r))
		case r == '\'' && current.Len() > 0:
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return words
}

// SplitSentences breaks text on sentence terminators and newlines. Both
// ASCII and fullwidth terminators are recognized so CJK sources split
// correctly.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '.', '!', '?', '\n', '。', '！', '？':
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
