package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ReadJSONL decodes verses from a JSONL stream, one verse object per line.
// Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]Verse, error) {
	scanner := bufio.NewScanner(r)
	// Some verses carry long token/segment annotations on a single line.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var verses []Verse
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var v Verse
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", lineNo, err)
		}
		verses = append(verses, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	return verses, nil
}

// LoadFile reads a JSONL corpus file and builds a Corpus from it.
func LoadFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file: %w", err)
	}
	defer f.Close()

	verses, err := ReadJSONL(f)
	if err != nil {
		return nil, err
	}
	c, err := New(verses)
	if err != nil {
		return nil, err
	}
	slog.Info("corpus loaded", "path", path, "verses", c.Len())
	return c, nil
}
