package lsp

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// documentStore holds the text of open documents.
type documentStore struct {
	mu        sync.RWMutex
	documents map[protocol.DocumentUri]string
}

func newDocumentStore() *documentStore {
	return &documentStore{documents: make(map[protocol.DocumentUri]string)}
}

func (s *documentStore) set(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.documents[uri] = text
	s.mu.Unlock()
}

func (s *documentStore) remove(uri protocol.DocumentUri) {
	s.mu.Lock()
	delete(s.documents, uri)
	s.mu.Unlock()
}

func (s *documentStore) get(uri protocol.DocumentUri) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.documents[uri]
	return text, ok
}

// line returns the text of a 0-based line, without its line ending.
func (s *documentStore) line(uri protocol.DocumentUri, line int) (string, bool) {
	text, ok := s.get(uri)
	if !ok {
		return "", false
	}
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[line], "\r"), true
}

// uriToPath converts a file:// URI to a local path. Other schemes are
// rejected.
func uriToPath(uri string) (string, bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	p := u.Path
	if runtime.GOOS == "windows" {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.Clean(filepath.FromSlash(p)), true
}

// applyRangeChange replaces the range r of text with newText. Positions use
// UTF-16 code units, as LSP requires.
func applyRangeChange(text string, r protocol.Range, newText string) string {
	start := offsetAt(text, r.Start)
	end := offsetAt(text, r.End)
	if end < start {
		start, end = end, start
	}
	return text[:start] + newText + text[end:]
}

// offsetAt converts a position to a byte offset, clamping past-the-end
// positions to the end of their line or of the text.
func offsetAt(text string, pos protocol.Position) int {
	offset := 0
	for line := 0; line < int(pos.Line); line++ {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		offset += next + 1
	}

	units := 0
	for offset < len(text) && units < int(pos.Character) {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}
		units += utf16.RuneLen(r)
		offset += size
	}
	return offset
}
