package curriculum

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/p-n-ai/materialbank/internal/classify"
)

type unreadableFS struct{}

func (unreadableFS) Open(string) (fs.File, error) { return nil, fs.ErrPermission }

// partialFS fails to list the "locked" directory.
type partialFS struct{ fstest.MapFS }

func (f partialFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == "locked" {
		return nil, fs.ErrPermission
	}
	return f.MapFS.ReadDir(name)
}

func TestLoadFS_UnreadableRoot(t *testing.T) {
	l := &Loader{standards: make(map[classify.SchoolLevel]map[classify.Subject][]Standard)}
	if err := l.loadFS(unreadableFS{}); !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("loadFS() error = %v, want ErrPermission", err)
	}
}

func TestLoadFS_SkipsUnreadableSubdirectory(t *testing.T) {
	fsys := partialFS{fstest.MapFS{
		"ok.yaml": {Data: []byte(`
standards:
  elementary:
    math:
      - code: M-1
        title: 数と計算
`)},
		"locked/hidden.yaml": {Data: []byte("standards: {}")},
	}}

	l := &Loader{standards: make(map[classify.SchoolLevel]map[classify.Subject][]Standard)}
	if err := l.loadFS(fsys); err != nil {
		t.Fatalf("loadFS() error = %v", err)
	}
	if got := l.Standards(classify.Elementary, classify.Math); len(got) != 1 || got[0].Code != "M-1" {
		t.Errorf("Standards() = %+v, want the readable file loaded", got)
	}
}
