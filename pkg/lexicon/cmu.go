package lexicon

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// errSkipLine signals that a line should be skipped (comment, empty, etc.).
var errSkipLine = errors.New("skip line")

// arpabetMap maps ARPAbet phonemes (without stress markers) to X-SAMPA.
// The stressed/unstressed forms of AH and ER are handled separately.
var arpabetMap = map[string]string{
	"AA": "A",
	"AE": "{",
	"AO": "O",
	"AW": "aU",
	"AY": "aI",
	"B":  "b",
	"CH": "tS",
	"D":  "d",
	"DH": "D",
	"EH": "E",
	"EY": "eI",
	"F":  "f",
	"G":  "g",
	"HH": "h",
	"IH": "I",
	"IY": "i",
	"JH": "dZ",
	"K":  "k",
	"L":  "l",
	"M":  "m",
	"N":  "n",
	"NG": "N",
	"OW": "oU",
	"OY": "OI",
	"P":  "p",
	"R":  "r",
	"S":  "s",
	"SH": "S",
	"T":  "t",
	"TH": "T",
	"UH": "U",
	"UW": "u",
	"V":  "v",
	"W":  "w",
	"Y":  "j",
	"Z":  "z",
	"ZH": "Z",
}

// ImportStats holds CMU import statistics for logging.
type ImportStats struct {
	TotalLines   int
	CommentLines int
	Imported     int
}

// ImportCMU reads a CMU Pronouncing Dictionary stream and loads it into the
// lexicon as X-SAMPA transcriptions. Writes are batched through a BatchWriter
// so large dictionaries do not pay one transaction per row.
func ImportCMU(ctx context.Context, db *sql.DB, r io.Reader) (ImportStats, error) {
	var stats ImportStats

	bw := NewBatchWriter(db, 500, 200*time.Millisecond)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			bw.Close()
			return stats, ctx.Err()
		default:
		}

		stats.TotalLines++
		line := scanner.Text()

		word, variant, xsampa, err := parseCMULine(line)
		if err == errSkipLine {
			if strings.HasPrefix(line, ";;;") {
				stats.CommentLines++
			}
			continue
		}
		if err != nil {
			continue
		}

		w, v, x := word, variant, xsampa
		if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			return Put(tx, w, v, x)
		}); err != nil {
			bw.Close()
			return stats, err
		}
		stats.Imported++
	}
	if err := scanner.Err(); err != nil {
		bw.Close()
		return stats, fmt.Errorf("scanner error: %w", err)
	}

	if err := bw.Close(); err != nil {
		return stats, err
	}
	return stats, nil
}

// parseCMULine parses one CMU dict line: WORD  PHONEME1 PHONEME2 ...
// (two spaces between word and phonemes). Returns errSkipLine for comments,
// empty lines, and entries that cannot be transcribed.
func parseCMULine(line string) (string, int, string, error) {
	if line == "" || strings.HasPrefix(line, ";;;") {
		return "", 0, "", errSkipLine
	}

	parts := strings.SplitN(line, "  ", 2)
	if len(parts) != 2 {
		return "", 0, "", errSkipLine
	}

	rawWord := strings.TrimSpace(parts[0])
	phonemes := strings.Fields(parts[1])
	if rawWord == "" || len(phonemes) == 0 {
		return "", 0, "", errSkipLine
	}

	word, variant := parseWordAndVariant(rawWord)
	xsampa, ok := phonemesToXSampa(phonemes)
	if !ok {
		return "", 0, "", errSkipLine
	}
	return word, variant, xsampa, nil
}

// parseWordAndVariant splits a raw CMU word like "HOUSE(2)" into the word and
// its variant index: no suffix is variant 0, "(2)" is 1, "(3)" is 2, etc.
func parseWordAndVariant(raw string) (string, int) {
	idx := strings.IndexByte(raw, '(')
	if idx == -1 {
		return raw, 0
	}
	end := strings.IndexByte(raw[idx:], ')')
	if end == -1 {
		return raw, 0
	}
	n, err := strconv.Atoi(raw[idx+1 : idx+end])
	if err != nil || n < 1 {
		return raw, 0
	}
	return raw[:idx], n - 1
}

// phonemesToXSampa converts ARPAbet phonemes to an X-SAMPA transcription.
// Primary stress becomes a leading ' on the stressed phoneme, secondary
// stress becomes %. Returns false if any phoneme is unknown.
func phonemesToXSampa(phonemes []string) (string, bool) {
	var b strings.Builder
	for _, p := range phonemes {
		base, stress := splitStress(p)

		var seg string
		switch base {
		case "AH":
			// Unstressed AH is schwa.
			if stress == 0 {
				seg = "@"
			} else {
				seg = "V"
			}
		case "ER":
			if stress == 0 {
				seg = "@r"
			} else {
				seg = "3r"
			}
		default:
			s, ok := arpabetMap[base]
			if !ok {
				return "", false
			}
			seg = s
		}

		switch stress {
		case 1:
			b.WriteByte('\'')
		case 2:
			b.WriteByte('%')
		}
		b.WriteString(seg)
	}
	return b.String(), true
}

// splitStress separates the trailing stress digit (0, 1, 2) from an ARPAbet
// phoneme. Consonants carry no digit and report stress 0.
func splitStress(phoneme string) (string, int) {
	if phoneme == "" {
		return phoneme, 0
	}
	last := phoneme[len(phoneme)-1]
	if last >= '0' && last <= '2' {
		return phoneme[:len(phoneme)-1], int(last - '0')
	}
	return phoneme, 0
}
