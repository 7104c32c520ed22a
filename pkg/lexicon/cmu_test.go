package lexicon

import (
	"context"
	"strings"
	"testing"
)

func TestParseCMULine(t *testing.T) {
	word, variant, xsampa, err := parseCMULine("WINAWER  W IH0 N AW1 ER0")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if word != "WINAWER" || variant != 0 {
		t.Fatalf("unexpected word/variant: %q %d", word, variant)
	}
	if xsampa != "wIn'aU@r" {
		t.Fatalf("expected wIn'aU@r, got %q", xsampa)
	}
}

func TestParseCMULineVariant(t *testing.T) {
	word, variant, _, err := parseCMULine("HOUSE(2)  HH AW1 Z")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if word != "HOUSE" || variant != 1 {
		t.Fatalf("expected HOUSE variant 1, got %q %d", word, variant)
	}
}

func TestParseCMULineSkips(t *testing.T) {
	cases := []string{
		"",
		";;; comment line",
		"NOSEPARATOR",
		"WORD  XX YY", // unknown phonemes
	}
	for _, line := range cases {
		if _, _, _, err := parseCMULine(line); err != errSkipLine {
			t.Errorf("line %q: expected errSkipLine, got %v", line, err)
		}
	}
}

func TestPhonemeStressMarkers(t *testing.T) {
	// Secondary stress is %, unstressed AH is schwa.
	_, _, xsampa, err := parseCMULine("ABOUT  AH0 B AW2 T")
	if err != nil {
		t.Fatal(err)
	}
	if xsampa != "@b%aUt" {
		t.Fatalf("expected @b%%aUt, got %q", xsampa)
	}
}

func TestImportCMU(t *testing.T) {
	conn := setupDB(t)

	dict := strings.Join([]string{
		";;; CMU dictionary excerpt",
		"WINAWER  W IH0 N AW1 ER0",
		"HOUSE  HH AW1 S",
		"HOUSE(2)  HH AW1 Z",
		"",
		"BADLINE",
	}, "\n")

	stats, err := ImportCMU(context.Background(), conn, strings.NewReader(dict))
	if err != nil {
		t.Fatalf("ImportCMU failed: %v", err)
	}
	if stats.Imported != 3 {
		t.Fatalf("expected 3 imported entries, got %+v", stats)
	}
	if stats.CommentLines != 1 {
		t.Errorf("expected 1 comment line, got %d", stats.CommentLines)
	}

	prons, err := Lookup(conn, "house")
	if err != nil {
		t.Fatal(err)
	}
	if len(prons) != 2 || prons[0] != "h'aUs" || prons[1] != "h'aUz" {
		t.Fatalf("unexpected house pronunciations: %v", prons)
	}

	prons, err = Lookup(conn, "Winawer")
	if err != nil {
		t.Fatal(err)
	}
	if len(prons) != 1 || prons[0] != "wIn'aU@r" {
		t.Fatalf("unexpected winawer pronunciations: %v", prons)
	}
}

func TestImportCMUCanceled(t *testing.T) {
	conn := setupDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ImportCMU(ctx, conn, strings.NewReader("HOUSE  HH AW1 S\n"))
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
