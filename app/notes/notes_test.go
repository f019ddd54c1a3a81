package notes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testDirs(t *testing.T) (string, string) {
	t.Helper()
	notesDir := t.TempDir()
	libraryDir := t.TempDir()

	writeFile(t, notesDir, "pronouns.md", "# Pronoun referents\n\nTracking open questions.")
	writeFile(t, notesDir, "drafts/chapter2.txt", "Chapter two observations")
	writeFile(t, notesDir, "ignore.bin", "binary")

	writeFile(t, libraryDir, "lane/volume1.txt", "entry one\nthe root rahma denotes mercy\nentry three")
	writeFile(t, libraryDir, "grammar.md", "On mercy and its derivatives")
	return notesDir, libraryDir
}

func TestService_List(t *testing.T) {
	notesDir, libraryDir := testDirs(t)
	s := NewService(notesDir, libraryDir)

	notes, err := s.List()
	require.NoError(t, err)
	require.Len(t, notes, 2)

	byPath := make(map[string]Note, len(notes))
	for _, n := range notes {
		byPath[n.Path] = n
	}
	require.Contains(t, byPath, "pronouns.md")
	assert.Equal(t, "pronouns", byPath["pronouns.md"].Title)
	assert.Equal(t, "# Pronoun referents", byPath["pronouns.md"].Snippet)
	assert.Contains(t, byPath, "drafts/chapter2.txt")
}

func TestService_List_SnippetTruncation(t *testing.T) {
	notesDir := t.TempDir()
	long := strings.Repeat("مَرْحَبًا ", 40)
	writeFile(t, notesDir, "long.md", long+"\nsecond line")

	s := NewService(notesDir, t.TempDir())
	notes, err := s.List()
	require.NoError(t, err)
	require.Len(t, notes, 1)

	snippet := notes[0].Snippet
	assert.True(t, utf8.ValidString(snippet))
	assert.Equal(t, 200, utf8.RuneCountInString(snippet))
}

func TestService_List_MissingDir(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "absent"), t.TempDir())
	notes, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestService_Content(t *testing.T) {
	notesDir, libraryDir := testDirs(t)
	s := NewService(notesDir, libraryDir)

	content, err := s.Content("pronouns.md")
	require.NoError(t, err)
	assert.Equal(t, "pronouns.md", content.Path)
	assert.Contains(t, content.Content, "Tracking open questions.")
	assert.Contains(t, content.HTML, "<h1>")

	content, err = s.Content("drafts/chapter2.txt")
	require.NoError(t, err)
	assert.Empty(t, content.HTML)

	_, err = s.Content("missing.md")
	assert.Error(t, err)
}

func TestService_Content_RejectsEscapingPaths(t *testing.T) {
	notesDir, libraryDir := testDirs(t)
	s := NewService(notesDir, libraryDir)

	for _, rel := range []string{"../secret.md", "..", ".", "/etc/passwd", "drafts/../../secret.md"} {
		_, err := s.Content(rel)
		assert.Error(t, err, "path %q", rel)
	}
}

func TestService_SearchLibrary(t *testing.T) {
	notesDir, libraryDir := testDirs(t)
	s := NewService(notesDir, libraryDir)

	hits, err := s.SearchLibrary("Mercy", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	byPath := make(map[string]LibraryHit, len(hits))
	for _, h := range hits {
		byPath[h.Path] = h
	}
	require.Contains(t, byPath, "lane/volume1.txt")
	assert.Equal(t, 2, byPath["lane/volume1.txt"].Line)
	assert.Equal(t, "the root rahma denotes mercy", byPath["lane/volume1.txt"].Snippet)
	require.Contains(t, byPath, "grammar.md")

	hits, err = s.SearchLibrary("mercy", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = s.SearchLibrary("   ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = s.SearchLibrary("nothing matches this", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
