// Package curriculum holds the curriculum standards reference table, keyed by
// school level and normalized subject.
package curriculum

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/materialbank/internal/classify"
)

//go:embed standards.yaml
var embedded embed.FS

// Loader loads and caches curriculum standards.
type Loader struct {
	standards map[classify.SchoolLevel]map[classify.Subject][]Standard
	files     int
	digest    []byte // chained hash of every loaded file
	mu        sync.RWMutex
}

// NewLoader creates a loader seeded with the embedded reference table.
func NewLoader() (*Loader, error) {
	l := &Loader{
		standards: make(map[classify.SchoolLevel]map[classify.Subject][]Standard),
	}
	if err := l.loadFS(embedded); err != nil {
		return nil, fmt.Errorf("loading embedded curriculum: %w", err)
	}
	return l, nil
}

// NewLoaderWithDir loads the embedded table and then overlays every YAML file
// found under rootDir. An entry for a (level, subject) pair replaces the
// embedded list for that pair.
func NewLoaderWithDir(rootDir string) (*Loader, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}
	if rootDir == "" {
		return l, nil
	}
	if _, err := os.Stat(rootDir); err != nil {
		return nil, fmt.Errorf("curriculum dir: %w", err)
	}
	if err := l.loadFS(os.DirFS(rootDir)); err != nil {
		return nil, fmt.Errorf("loading curriculum from %s: %w", rootDir, err)
	}

	slog.Info("curriculum loaded", "dir", rootDir, "files", l.files)
	return l, nil
}

// Standards returns the standards for a school level and subject in declared
// order. Unknown pairs yield an empty, non-nil slice.
func (l *Loader) Standards(level classify.SchoolLevel, subject classify.Subject) []Standard {
	l.mu.RLock()
	defer l.mu.RUnlock()

	list := l.standards[level][subject]
	out := make([]Standard, len(list))
	for i, s := range list {
		out[i] = s.clone()
	}
	return out
}

// Subjects returns the subjects that have standards for a school level.
func (l *Loader) Subjects(level classify.SchoolLevel) []classify.Subject {
	l.mu.RLock()
	defer l.mu.RUnlock()

	subjects := make([]classify.Subject, 0, len(l.standards[level]))
	for s := range l.standards[level] {
		subjects = append(subjects, s)
	}
	return subjects
}

func (l *Loader) loadFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			slog.Warn("skipping unreadable curriculum path", "path", p, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(p))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		return l.loadFile(fsys, p)
	})
}

func (l *Loader) loadFile(fsys fs.FS, p string) error {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return err
	}

	var file standardsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		slog.Warn("skipping invalid curriculum YAML", "path", p, "error", err)
		return nil
	}
	if len(file.Standards) == 0 {
		return nil // Not a standards file
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for level, bySubject := range file.Standards {
		if _, ok := classify.ParseSchoolLevel(string(level)); !ok {
			slog.Warn("skipping unknown school level", "path", p, "level", level)
			continue
		}
		if l.standards[level] == nil {
			l.standards[level] = make(map[classify.Subject][]Standard)
		}
		for subject, list := range bySubject {
			l.standards[level][subject] = list
		}
	}
	l.files++
	h := sha256.New()
	h.Write(l.digest)
	h.Write([]byte(p))
	h.Write(data)
	l.digest = h.Sum(nil)
	return nil
}

// Version identifies the loaded standards. It changes whenever a different
// set of files or file contents is loaded.
func (l *Loader) Version() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.digest) == 0 {
		return ""
	}
	return hex.EncodeToString(l.digest[:8])
}

func (s Standard) clone() Standard {
	s.Skills = append([]string{}, s.Skills...)
	s.KnowledgeAreas = append([]string{}, s.KnowledgeAreas...)
	return s
}
