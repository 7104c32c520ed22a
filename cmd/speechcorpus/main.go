package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"github.com/japaniel/speechcorpus/pkg/compiler"
	"github.com/japaniel/speechcorpus/pkg/config"
	"github.com/japaniel/speechcorpus/pkg/corpus"
	"github.com/japaniel/speechcorpus/pkg/export"
	"github.com/japaniel/speechcorpus/pkg/harvest"
	"github.com/japaniel/speechcorpus/pkg/lexicon"
)

const defaultOutput = "speech_model.bin"

func main() {
	localeFlag := flag.String("locale", "", "Model locale (overrides SPEECHCORPUS_LOCALE)")
	identifierFlag := flag.String("identifier", "", "Model identifier (overrides SPEECHCORPUS_IDENTIFIER)")
	versionFlag := flag.String("model-version", "", "Model version (overrides SPEECHCORPUS_VERSION)")
	compilerFlag := flag.String("compiler", "", "Compile service URL (overrides SPEECHCORPUS_COMPILER_URL)")
	phrasesFlag := flag.String("phrases", "", "Path to a JSON corpus file of phrases and templates")
	harvestFlag := flag.String("harvest", "", "URL of an article to harvest phrases from")
	lexiconFlag := flag.String("lexicon", "", "Path to a SQLite pronunciation lexicon")
	dictFlag := flag.String("import-dict", "", "Path to a CMU pronouncing dictionary to import into the lexicon")
	flag.Parse()

	dest := flag.Arg(0)
	if dest == "" {
		dest = defaultOutput
	}

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *localeFlag != "" {
		cfg.Locale = *localeFlag
	}
	if *identifierFlag != "" {
		cfg.Identifier = *identifierFlag
	}
	if *versionFlag != "" {
		cfg.Version = *versionFlag
	}
	if *compilerFlag != "" {
		cfg.CompilerURL = *compilerFlag
	}

	// Handle Lexicon Import (Manual)
	if *dictFlag != "" {
		lexPath := *lexiconFlag
		if lexPath == "" {
			lexPath = "lexicon.db"
		}
		lex, err := lexicon.Open(lexPath)
		if err != nil {
			log.Fatalf("Failed to open lexicon: %v", err)
		}
		defer lex.Close()

		f, err := os.Open(*dictFlag)
		if err != nil {
			log.Fatalf("Failed to open dictionary file: %v", err)
		}
		defer f.Close()

		fmt.Printf("Importing %s into %s...\n", *dictFlag, lexPath)
		stats, err := lexicon.ImportCMU(ctx, lex, f)
		if err != nil {
			log.Fatalf("Failed to import dictionary: %v", err)
		}
		fmt.Printf("Imported %d pronunciations (%d lines, %d comments).\n",
			stats.Imported, stats.TotalLines, stats.CommentLines)
		return
	}

	var lex *sql.DB
	if *lexiconFlag != "" {
		lex, err = lexicon.Open(*lexiconFlag)
		if err != nil {
			log.Fatalf("Failed to open lexicon: %v", err)
		}
		defer lex.Close()
	}

	builder := corpus.NewBuilder()
	populated := false

	if *phrasesFlag != "" {
		f, err := os.Open(*phrasesFlag)
		if err != nil {
			log.Fatalf("Failed to open corpus file: %v", err)
		}
		doc, err := corpus.LoadDocument(f)
		f.Close()
		if err != nil {
			log.Fatalf("Failed to load corpus file: %v", err)
		}
		annotateDocument(lex, &doc)
		doc.Append(builder)
		populated = true
		fmt.Printf("Loaded %d phrases and %d templates from %s\n",
			len(doc.Phrases), len(doc.Templates), *phrasesFlag)
	}

	if *harvestFlag != "" {
		analyzer, err := harvest.NewAnalyzer(cfg.Locale)
		if err != nil {
			log.Fatalf("Failed to create analyzer: %v", err)
		}
		h := harvest.NewHarvester(analyzer)
		h.Logger = log.Default()

		fmt.Printf("Harvesting %s...\n", *harvestFlag)
		result, err := h.Harvest(ctx, *harvestFlag)
		if err != nil {
			log.Fatalf("Harvest failed: %v", err)
		}
		for _, s := range result.Sentences {
			builder.AddPhrase(s)
		}
		for _, w := range result.Words {
			opts := []corpus.PhraseOption{corpus.WithCount(w.Count)}
			if p := lookupPronunciation(lex, w.Text); p != "" {
				opts = append(opts, corpus.WithPronunciation(p))
			}
			builder.AddPhrase(w.Text, opts...)
		}
		populated = true
		fmt.Printf("Harvested %d sentences and %d words from %q\n",
			len(result.Sentences), len(result.Words), result.Title)
	}

	if !populated {
		exampleCorpus(builder)
		fmt.Println("No corpus inputs given; using the built-in example corpus.")
	}

	c, err := builder.Build()
	if err != nil {
		log.Fatalf("Invalid corpus: %v", err)
	}

	hc := compiler.NewHTTPCompiler(cfg.CompilerURL)
	hc.Client.Timeout = cfg.CompileTimeout

	exporter := export.New(afero.NewOsFs(), hc)
	exporter.Logger = log.Default()

	if err := exporter.Export(ctx, c, cfg, dest); err != nil {
		var buildErr *compiler.BuildError
		var ioErr *export.IOError
		switch {
		case errors.As(err, &buildErr):
			log.Fatalf("Model build failed: %v", buildErr)
		case errors.As(err, &ioErr):
			log.Fatalf("Could not write model: %v", ioErr)
		default:
			log.Fatalf("Export failed: %v", err)
		}
	}

	fmt.Printf("Model exported to %s\n", dest)
}

// annotateDocument fills in missing pronunciations for single-word phrases
// from the lexicon. Multi-word phrases are left alone: the lexicon keys
// individual words only.
func annotateDocument(lex *sql.DB, doc *corpus.Document) {
	if lex == nil {
		return
	}
	for i, p := range doc.Phrases {
		if p.Pronunciation != "" {
			continue
		}
		if pron := lookupPronunciation(lex, p.Phrase); pron != "" {
			doc.Phrases[i].Pronunciation = pron
		}
	}
}

// lookupPronunciation returns the primary lexicon pronunciation for a single
// word, or "" when the lexicon is absent, the phrase spans multiple words, or
// no entry exists.
func lookupPronunciation(lex *sql.DB, word string) string {
	if lex == nil || strings.ContainsAny(word, " \t") {
		return ""
	}
	prons, err := lexicon.Lookup(lex, word)
	if err != nil || len(prons) == 0 {
		return ""
	}
	return prons[0]
}

// exampleCorpus fills the builder with a small chess-opening vocabulary, the
// kind of domain terms a general recognizer misses.
func exampleCorpus(b *corpus.Builder) {
	b.AddPhrase("Winawer", corpus.WithCount(100), corpus.WithPronunciation("wIn'aU@r")).
		AddPhrase("Play the Winawer", corpus.WithCount(50)).
		AddPhrase("Nimzo-Indian", corpus.WithCount(80)).
		AddPhrase("Play the Nimzo-Indian defense", corpus.WithCount(40)).
		AddPhrase("Catalan", corpus.WithCount(60))

	squares := make([]string, 0, 64)
	for file := 'a'; file <= 'h'; file++ {
		for rank := '1'; rank <= '8'; rank++ {
			squares = append(squares, string(file)+string(rank))
		}
	}
	b.AddTemplate("move <piece> to <square>", corpus.Classes{
		"piece":  {"pawn", "knight", "bishop", "rook", "queen", "king"},
		"square": squares,
	}, corpus.WithTemplateCount(1000))
}
