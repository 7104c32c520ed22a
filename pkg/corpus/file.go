package corpus

import (
	"encoding/json"
	"fmt"
	"io"
)

// FilePhrase is one phrase record in a corpus file. A zero Count takes the
// builder default.
type FilePhrase struct {
	Phrase        string `json:"phrase"`
	Count         int    `json:"count,omitempty"`
	Pronunciation string `json:"pronunciation,omitempty"`
}

// FileTemplate is one template record in a corpus file.
type FileTemplate struct {
	Template string              `json:"template"`
	Count    int                 `json:"count,omitempty"`
	Classes  map[string][]string `json:"classes"`
}

// Document is the JSON shape of a user-supplied corpus file.
type Document struct {
	Phrases   []FilePhrase   `json:"phrases"`
	Templates []FileTemplate `json:"templates"`
}

// LoadDocument decodes a corpus file. It only parses; appending the records
// to a builder is the caller's job, so the caller can annotate entries (e.g.
// with lexicon pronunciations) along the way.
func LoadDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode corpus file: %w", err)
	}
	return doc, nil
}

// Append adds every record of the document to the builder, preserving file
// order. Records with zero counts take the builder defaults.
func (d Document) Append(b *Builder) *Builder {
	for _, p := range d.Phrases {
		opts := []PhraseOption{}
		if p.Count != 0 {
			opts = append(opts, WithCount(p.Count))
		}
		if p.Pronunciation != "" {
			opts = append(opts, WithPronunciation(p.Pronunciation))
		}
		b.AddPhrase(p.Phrase, opts...)
	}
	for _, t := range d.Templates {
		opts := []TemplateOption{}
		if t.Count != 0 {
			opts = append(opts, WithTemplateCount(t.Count))
		}
		b.AddTemplate(t.Template, t.Classes, opts...)
	}
	return b
}
