// Package corpus accumulates phrase and template entries for a speech-model
// compilation. The builder is append-only and preserves insertion order;
// semantic interpretation of the entries is left to the model compiler.
package corpus

import (
	"fmt"
	"regexp"
)

// Default relative frequency weights applied when the caller does not override them.
const (
	DefaultPhraseCount   = 10
	DefaultTemplateCount = 100
)

// PhraseEntry is a single vocabulary or context string with a frequency weight.
type PhraseEntry struct {
	Phrase string
	Count  int
	// Pronunciation is an X-SAMPA transcription paired with Phrase.
	// Empty means no pronunciation guidance is supplied.
	Pronunciation string
}

// Classes maps a class name to its ordered substitution vocabulary.
type Classes map[string][]string

// TemplateEntry is a pattern with named substitution classes. The compiler
// expands it into concrete phrases; this package never expands it eagerly.
type TemplateEntry struct {
	Classes  Classes
	Template string
	Count    int
}

// Corpus is the full ordered set of entries accumulated before export.
// It is a value type; once handed to an exporter it must not be mutated.
type Corpus struct {
	Phrases   []PhraseEntry
	Templates []TemplateEntry
}

// placeholderRe matches <name> tokens inside a template pattern.
var placeholderRe = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9_]*)>`)

// Builder accumulates entries through chained append calls. Malformed input
// records a sticky error that surfaces from Build, so a whole chain can be
// written without per-call error checks.
type Builder struct {
	phrases   []PhraseEntry
	templates []TemplateEntry
	err       error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// PhraseOption customizes a phrase append.
type PhraseOption func(*PhraseEntry)

// WithCount overrides the default frequency weight of a phrase.
func WithCount(n int) PhraseOption {
	return func(p *PhraseEntry) { p.Count = n }
}

// WithPronunciation attaches an X-SAMPA transcription to a phrase.
func WithPronunciation(xsampa string) PhraseOption {
	return func(p *PhraseEntry) { p.Pronunciation = xsampa }
}

// TemplateOption customizes a template append.
type TemplateOption func(*TemplateEntry)

// WithTemplateCount overrides the default frequency weight of a template.
func WithTemplateCount(n int) TemplateOption {
	return func(t *TemplateEntry) { t.Count = n }
}

// AddPhrase appends a phrase entry. Duplicates are permitted and kept as-is;
// the same text may appear once as vocabulary and again in a longer phrase.
func (b *Builder) AddPhrase(phrase string, opts ...PhraseOption) *Builder {
	entry := PhraseEntry{Phrase: phrase, Count: DefaultPhraseCount}
	for _, opt := range opts {
		opt(&entry)
	}
	if err := validatePhrase(entry); err != nil {
		b.recordErr(err)
		return b
	}
	b.phrases = append(b.phrases, entry)
	return b
}

// AddTemplate appends a template entry. Every <placeholder> in the pattern
// must name a declared class; an undeclared reference is recorded as an error
// here rather than deferred to the compiler.
func (b *Builder) AddTemplate(template string, classes Classes, opts ...TemplateOption) *Builder {
	entry := TemplateEntry{Template: template, Classes: classes, Count: DefaultTemplateCount}
	for _, opt := range opts {
		opt(&entry)
	}
	if err := validateTemplate(entry); err != nil {
		b.recordErr(err)
		return b
	}
	b.templates = append(b.templates, entry)
	return b
}

// Err returns the first error recorded by an append call, or nil.
func (b *Builder) Err() error {
	return b.err
}

// Len reports the number of successfully appended phrase and template entries.
func (b *Builder) Len() (phrases, templates int) {
	return len(b.phrases), len(b.templates)
}

// Build returns the accumulated corpus. It fails if any append call recorded
// an error. The returned slices are copies, so further appends to the builder
// do not alias a corpus already handed out.
func (b *Builder) Build() (Corpus, error) {
	if b.err != nil {
		return Corpus{}, b.err
	}
	c := Corpus{
		Phrases:   make([]PhraseEntry, len(b.phrases)),
		Templates: make([]TemplateEntry, len(b.templates)),
	}
	copy(c.Phrases, b.phrases)
	copy(c.Templates, b.templates)
	return c, nil
}

func (b *Builder) recordErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

func validatePhrase(p PhraseEntry) error {
	if p.Phrase == "" {
		return fmt.Errorf("phrase must be non-empty")
	}
	if p.Count < 1 {
		return fmt.Errorf("phrase %q: count must be >= 1, got %d", p.Phrase, p.Count)
	}
	return nil
}

func validateTemplate(t TemplateEntry) error {
	if t.Template == "" {
		return fmt.Errorf("template must be non-empty")
	}
	if t.Count < 1 {
		return fmt.Errorf("template %q: count must be >= 1, got %d", t.Template, t.Count)
	}
	for name, values := range t.Classes {
		if name == "" {
			return fmt.Errorf("template %q: class name must be non-empty", t.Template)
		}
		if len(values) == 0 {
			return fmt.Errorf("template %q: class %q has no substitution values", t.Template, name)
		}
	}
	for _, m := range placeholderRe.FindAllStringSubmatch(t.Template, -1) {
		if _, ok := t.Classes[m[1]]; !ok {
			return fmt.Errorf("template %q references undeclared class %q", t.Template, m[1])
		}
	}
	return nil
}

// Placeholders returns the class names referenced by a template pattern, in
// order of first appearance.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
