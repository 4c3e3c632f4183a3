package atomicfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestWriteFileReplacesContent(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.php")
	c.Assert(os.WriteFile(path, []byte("old"), 0o640), qt.IsNil)

	c.Assert(WriteFile(path, []byte("new"), 0o640), qt.IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "new")

	info, err := os.Stat(path)
	c.Assert(err, qt.IsNil)
	c.Assert(info.Mode().Perm(), qt.Equals, os.FileMode(0o640))
}

func TestWriteFileLeavesNoTempFiles(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.php")

	c.Assert(WriteFile(path, []byte("x"), 0o644), qt.IsNil)
	c.Assert(WriteFile(path, []byte("y"), 0o644), qt.IsNil)

	entries, err := os.ReadDir(dir)
	c.Assert(err, qt.IsNil)
	for _, e := range entries {
		c.Assert(strings.Contains(e.Name(), ".tmp-"), qt.IsFalse, qt.Commentf("leftover %s", e.Name()))
	}
	c.Assert(entries, qt.HasLen, 1)
}

func TestWriteFileMissingDir(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "missing", "config.php")

	err := WriteFile(path, []byte("x"), 0o644)
	c.Assert(err, qt.ErrorMatches, "creating temp file: .*")
}

func TestBackupCopiesContentAndMode(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "config.php")
	dst := src + ".bak"
	c.Assert(os.WriteFile(src, []byte("payload"), 0o600), qt.IsNil)
	c.Assert(os.WriteFile(dst, []byte("stale backup that is longer"), 0o600), qt.IsNil)

	c.Assert(Backup(src, dst), qt.IsNil)

	data, err := os.ReadFile(dst)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "payload")
	c.Assert(Mode(dst, 0), qt.Equals, os.FileMode(0o600))
}

func TestBackupTightensExistingBackup(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "config.php")
	dst := src + ".bak"
	c.Assert(os.WriteFile(dst, []byte("stale"), 0o644), qt.IsNil)
	c.Assert(os.WriteFile(src, []byte("secret"), 0o600), qt.IsNil)
	c.Assert(os.Chmod(src, 0o600), qt.IsNil)

	c.Assert(Backup(src, dst), qt.IsNil)

	data, err := os.ReadFile(dst)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "secret")
	c.Assert(Mode(dst, 0), qt.Equals, os.FileMode(0o600))
}

func TestBackupMissingSource(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	err := Backup(filepath.Join(dir, "nope"), filepath.Join(dir, "nope.bak"))
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(errors.Is(err, fs.ErrNotExist), qt.IsTrue)
}

func TestModeFallback(t *testing.T) {
	c := qt.New(t)
	c.Assert(Mode(filepath.Join(t.TempDir(), "nope"), 0o644), qt.Equals, os.FileMode(0o644))
}
