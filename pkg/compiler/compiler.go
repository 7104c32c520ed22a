// Package compiler defines the boundary to the external speech-model
// compiler. The compiler itself is a closed black box: this package only
// shapes the submission request and transports it.
package compiler

import (
	"context"
	"fmt"

	"github.com/japaniel/speechcorpus/pkg/corpus"
)

// Pronunciation associates an X-SAMPA transcription with exact phrase text.
type Pronunciation struct {
	Phrase string `json:"phrase"`
	XSampa string `json:"xsampa"`
}

// PhraseCount is a phrase with its relative frequency weight.
type PhraseCount struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// Template is a templated-generation unit: a pattern, its class vocabularies,
// and the weight applied to every expansion.
type Template struct {
	Classes  map[string][]string `json:"classes"`
	Template string              `json:"template"`
	Count    int                 `json:"count"`
}

// Request is the full submission handed to the compiler in one call.
// Pronunciations come before Phrases: the compiler requires a phrase's
// pronunciation to be registered ahead of its frequency count.
type Request struct {
	Locale         string          `json:"locale"`
	Identifier     string          `json:"identifier"`
	Version        string          `json:"version"`
	Pronunciations []Pronunciation `json:"pronunciations,omitempty"`
	Phrases        []PhraseCount   `json:"phrases"`
	Templates      []Template      `json:"templates,omitempty"`
}

// Compiler turns a request into a binary model artifact. Compile blocks until
// the external compiler finishes and returns the path of the freshly produced
// artifact at a temporary location owned by the implementation.
type Compiler interface {
	Compile(ctx context.Context, req Request) (string, error)
}

// BuildError reports that the compiler rejected the corpus (e.g. an
// unsupported locale). It is distinct from transport or filesystem failures.
type BuildError struct {
	Msg string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("model build rejected: %s", e.Msg)
}

// NewRequest translates a corpus and identity values into the compiler's
// submission shape. For each phrase carrying a pronunciation, the association
// is emitted before the phrase's count entry.
func NewRequest(locale, identifier, version string, c corpus.Corpus) Request {
	req := Request{
		Locale:     locale,
		Identifier: identifier,
		Version:    version,
	}
	for _, p := range c.Phrases {
		if p.Pronunciation != "" {
			req.Pronunciations = append(req.Pronunciations, Pronunciation{
				Phrase: p.Phrase,
				XSampa: p.Pronunciation,
			})
		}
		req.Phrases = append(req.Phrases, PhraseCount{Phrase: p.Phrase, Count: p.Count})
	}
	for _, t := range c.Templates {
		req.Templates = append(req.Templates, Template{
			Classes:  t.Classes,
			Template: t.Template,
			Count:    t.Count,
		})
	}
	return req
}
