// Package notes serves the researcher's working notes (markdown and
// plain text files under a notes directory) and a line-level search over
// the reference library directory.
package notes

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
)

type Service struct {
	notesDir   string
	libraryDir string
	md         goldmark.Markdown
}

func NewService(notesDir, libraryDir string) *Service {
	return &Service{
		notesDir:   notesDir,
		libraryDir: libraryDir,
		md:         goldmark.New(),
	}
}

// Note is one listed note file with its first line as a snippet.
type Note struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// NoteContent is a full note; HTML is set for markdown files.
type NoteContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	HTML    string `json:"html,omitempty"`
}

// LibraryHit is one matching line in a library resource.
type LibraryHit struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
}

func textFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt":
		return true
	}
	return false
}

// List walks the notes directory for .md and .txt files. A missing
// directory yields an empty list.
func (s *Service) List() ([]Note, error) {
	var notes []Note
	err := filepath.WalkDir(s.notesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !textFile(path) {
			return nil
		}
		rel, err := filepath.Rel(s.notesDir, path)
		if err != nil {
			return err
		}
		note := Note{
			Path:  filepath.ToSlash(rel),
			Title: strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
		}
		if data, err := os.ReadFile(path); err == nil {
			first, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
			if runes := []rune(first); len(runes) > 200 {
				first = string(runes[:200])
			}
			note.Snippet = first
		}
		notes = append(notes, note)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// Content reads one note by its relative path. Paths escaping the notes
// directory are rejected.
func (s *Service) Content(rel string) (*NoteContent, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("invalid note path %q", rel)
	}
	full := filepath.Join(s.notesDir, clean)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading note: %w", err)
	}

	content := &NoteContent{Path: filepath.ToSlash(clean), Content: string(data)}
	if strings.EqualFold(filepath.Ext(clean), ".md") {
		var html strings.Builder
		if err := s.md.Convert(data, &html); err == nil {
			content.HTML = html.String()
		}
	}
	return content, nil
}

// SearchLibrary scans every text resource under the library directory for
// lines containing the query, case-insensitively, up to limit hits.
func (s *Service) SearchLibrary(query string, limit int) ([]LibraryHit, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	var hits []LibraryHit
	err := filepath.WalkDir(s.libraryDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if len(hits) >= limit {
			return fs.SkipAll
		}
		if d.IsDir() || !textFile(path) {
			return nil
		}
		rel, err := filepath.Rel(s.libraryDir, path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if strings.Contains(strings.ToLower(line), q) {
				hits = append(hits, LibraryHit{
					Path:    filepath.ToSlash(rel),
					Line:    lineNo,
					Snippet: strings.TrimSpace(line),
				})
				if len(hits) >= limit {
					return fs.SkipAll
				}
			}
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("searching library: %w", err)
	}
	return hits, nil
}
