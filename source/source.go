// Package source supplies schema documents to the compiler.
//
// Fetching from the network is left to callers; a Fetcher only has to hand
// out documents by name and report the revision they belong to. Dir serves a
// local directory (typically a cache populated by some other tool) and Map
// serves documents held in memory.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/reoring/pdlgen/internal/lexer"
	"github.com/reoring/pdlgen/revision"
)

// Fetcher hands out schema documents.
type Fetcher interface {
	// Fetch returns the document stored under a slash-separated name.
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Revision reports the revision of the documents, zero when unknown.
	Revision(ctx context.Context) (revision.Revision, error)
}

// Document is one fetched schema text.
type Document struct {
	Name string
	Text []byte
}

// ErrOutsideRoot is returned for names that escape the fetcher root.
var ErrOutsideRoot = errors.New("source: name escapes the root")

func cleanName(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, name)
	}
	return clean, nil
}

// Dir reads documents below Root. Revision comes from Rev when set,
// otherwise from a revision marker in Root.
type Dir struct {
	Root string
	Rev  revision.Revision
}

func (d Dir) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(d.Root, filepath.FromSlash(clean)))
	if err != nil {
		return nil, fmt.Errorf("source: fetch %s: %w", name, err)
	}
	return data, nil
}

func (d Dir) Revision(ctx context.Context) (revision.Revision, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !d.Rev.IsZero() {
		return d.Rev, nil
	}
	m, err := revision.ReadMarker(filepath.Join(d.Root, revision.MarkerFile))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return m.Revision, nil
}

// Map serves documents from memory.
type Map struct {
	Files map[string][]byte
	Rev   revision.Revision
}

func (m Map) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, ok := m.Files[clean]
	if !ok {
		return nil, fmt.Errorf("source: fetch %s: %w", name, fs.ErrNotExist)
	}
	return data, nil
}

func (m Map) Revision(ctx context.Context) (revision.Revision, error) {
	return m.Rev, ctx.Err()
}

// Expand fetches roots and every document they include, breadth-first in
// declared order. Include paths are relative to the including document.
// Each document is returned once, at its first position.
func Expand(ctx context.Context, f Fetcher, roots ...string) ([]Document, error) {
	var (
		out   []Document
		queue []string
		seen  = map[string]bool{}
	)
	push := func(name string) error {
		clean, err := cleanName(name)
		if err != nil {
			return err
		}
		if !seen[clean] {
			seen[clean] = true
			queue = append(queue, clean)
		}
		return nil
	}
	for _, r := range roots {
		if err := push(r); err != nil {
			return nil, err
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		text, err := f.Fetch(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{Name: name, Text: text})
		includes, err := Includes(text)
		if err != nil {
			return nil, fmt.Errorf("source: %s: %w", name, err)
		}
		for _, inc := range includes {
			if err := push(path.Join(path.Dir(name), inc)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Includes lists the top-level include paths of a document in order.
func Includes(text []byte) ([]string, error) {
	toks, err := lexer.Lex(string(text))
	if err != nil {
		return nil, err
	}
	var out []string
	for i := 0; i+2 < len(toks); i++ {
		if toks[i].Type == lexer.INDENT && toks[i].Width == 0 &&
			toks[i+1].Type == lexer.INCLUDE && toks[i+2].Type == lexer.IDENT {
			out = append(out, toks[i+2].Lexeme)
		}
	}
	return out, nil
}
