package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const (
	promptExt    = ".txt"
	promptReadme = "README.md"
)

// builtinPrompts seeds missing prompt files and stands in for empty ones.
var builtinPrompts = map[string]string{
	driven.PromptAskGuardrail: domain.DefaultAskGuardrail,
}

// cachedPrompt remembers a template together with the file state it came from.
type cachedPrompt struct {
	text    string
	modTime time.Time
	size    int64
}

// PromptStore serves prompt templates from <dir>/<name>.txt.
//
// The directory is seeded on first Load, never at construction. A file edited
// while a chat or MCP server is running is picked up on the next Load because
// entries are keyed on the file's modification time and size.
type PromptStore struct {
	dir string

	seed    sync.Once
	seedErr error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

// NewPromptStore creates a store rooted at dir, or ~/.lectern/prompts when
// dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".lectern", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template. Built-in prompts never fail: a missing,
// empty or unreadable file yields the built-in text.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(s.seedDir)

	builtin, hasBuiltin := builtinPrompts[name]
	if s.seedErr != nil {
		if hasBuiltin {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt store: %w", s.seedErr)
	}

	text, err := s.read(name)
	if err == nil && text == "" {
		err = fmt.Errorf("prompt %s%s is empty", name, promptExt)
	}
	if err != nil {
		if hasBuiltin {
			return builtin, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	return text, nil
}

// Reload forgets every cached template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]cachedPrompt)
	s.mu.Unlock()
}

// read returns the trimmed file content, reusing the cache while the file
// is unchanged.
func (s *PromptStore) read(name string) (string, error) {
	path := filepath.Join(s.dir, name+promptExt)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	c, ok := s.cache[name]
	s.mu.Unlock()
	if ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))

	s.mu.Lock()
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime(), size: info.Size()}
	s.mu.Unlock()
	return text, nil
}

func (s *PromptStore) seedDir() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, text := range builtinPrompts {
		if err := writeIfMissing(filepath.Join(s.dir, name+promptExt), text+"\n"); err != nil {
			s.seedErr = fmt.Errorf("seed prompt %q: %w", name, err)
			return
		}
	}

	if err := writeIfMissing(filepath.Join(s.dir, promptReadme), readmeText); err != nil {
		s.seedErr = fmt.Errorf("seed prompt readme: %w", err)
	}
}

// writeIfMissing creates path with content unless it already exists.
func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

const readmeText = `# Lectern Prompts

This directory holds the instructions lectern sends to the language model.

- ask_guardrail.txt is prepended to every grounded question. It tells the
  model to answer only from the numbered chunks and to cite them as [#id].

Edits apply to the next question, including in a running chat or MCP server.
Empty or delete a file to restore the built-in text. Templates take no
placeholders: the chunks and the question are appended after them.
`
