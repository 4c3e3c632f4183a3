// Package definefile edits define("NAME", VALUE); declarations inside a PHP
// style config file without touching the rest of the file.
//
// A Document is parsed once into literal text and declarations. Set and
// Delete change the declarations in memory; Save writes the file back after
// copying the previous version to a ".bak" sibling.
//
// A Document is not safe for concurrent use, and nothing guards the file
// against other processes: two processes saving the same path race and the
// last one wins.
package definefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/kalambet/payctl/internal/atomicfile"
)

const backupSuffix = ".bak"

// Document is the in-memory copy of a declaration file.
type Document struct {
	path       string
	backupPath string
	segments   []segment
}

// Open reads and parses the file at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	d := Parse(string(data))
	d.path = path
	d.backupPath = path + backupSuffix
	return d, nil
}

// Parse builds a Document from text with no file behind it. Save fails on
// such a document.
func Parse(text string) *Document {
	return &Document{segments: parse(text)}
}

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// BackupPath returns where Save copies the previous file content.
func (d *Document) BackupPath() string { return d.backupPath }

// Get returns the value declared for name. ok is false when the name is not
// declared; that is not an error.
func (d *Document) Get(name string) (v Value, ok bool, err error) {
	idx, err := d.find(name)
	if err != nil || idx < 0 {
		return Value{}, false, err
	}
	v, err = decode(d.segments[idx])
	if err != nil {
		return Value{}, true, fmt.Errorf("reading %s: %w", name, err)
	}
	return v, true, nil
}

// GetString returns a string declaration. It fails with ErrKind when name
// holds a list.
func (d *Document) GetString(name string) (string, bool, error) {
	v, ok, err := d.Get(name)
	if err != nil || !ok {
		return "", ok, err
	}
	if v.Kind() != KindString {
		return "", true, fmt.Errorf("%w: %s is a %s", ErrKind, name, v.Kind())
	}
	return v.Text(), true, nil
}

// GetInts returns a list declaration. It fails with ErrKind when name holds
// a string.
func (d *Document) GetInts(name string) ([]int, bool, error) {
	v, ok, err := d.Get(name)
	if err != nil || !ok {
		return nil, ok, err
	}
	if v.Kind() != KindIntList {
		return nil, true, fmt.Errorf("%w: %s is a %s", ErrKind, name, v.Kind())
	}
	return v.Ints(), true, nil
}

// Set replaces the declaration for name in place, or appends a new one on
// its own line at the end of the document.
func (d *Document) Set(name string, v Value) error {
	if err := validateName(name); err != nil {
		return err
	}
	if v.Kind() == 0 {
		return fmt.Errorf("setting %s: empty value", name)
	}
	idx, err := d.find(name)
	if err != nil {
		return err
	}
	decl := segment{
		text:   render(name, v),
		isDecl: true,
		name:   name,
		kind:   v.Kind(),
		raw:    v.literal(),
	}
	if idx >= 0 {
		d.segments[idx] = decl
		return nil
	}
	sep := d.lineSeparator()
	d.segments = append(d.segments, segment{text: sep}, decl, segment{text: sep})
	return nil
}

// SetString is Set with a string value.
func (d *Document) SetString(name, s string) error {
	return d.Set(name, String(s))
}

// SetInts is Set with a list value.
func (d *Document) SetInts(name string, ints []int) error {
	return d.Set(name, IntList(ints...))
}

// Delete removes the declaration for name along with the line break that
// follows it. It reports whether anything was removed.
func (d *Document) Delete(name string) (bool, error) {
	idx, err := d.find(name)
	if err != nil || idx < 0 {
		return false, err
	}
	d.segments = append(d.segments[:idx], d.segments[idx+1:]...)
	if idx < len(d.segments) && !d.segments[idx].isDecl {
		lit := d.segments[idx].text
		switch {
		case strings.HasPrefix(lit, "\r\n"):
			lit = lit[2:]
		case strings.HasPrefix(lit, "\n"):
			lit = lit[1:]
		}
		if lit == "" {
			d.segments = append(d.segments[:idx], d.segments[idx+1:]...)
		} else {
			d.segments[idx].text = lit
		}
	}
	return true, nil
}

// Names returns the declared names in file order. A duplicated name is
// listed once per declaration.
func (d *Document) Names() []string {
	var names []string
	for _, s := range d.segments {
		if s.isDecl {
			names = append(names, s.name)
		}
	}
	return names
}

// Duplicates returns the names declared more than once, in order of their
// first appearance.
func (d *Document) Duplicates() []string {
	seen := make(map[string]int)
	var dups []string
	for _, name := range d.Names() {
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	return []byte(d.String())
}

func (d *Document) String() string {
	var b strings.Builder
	for _, s := range d.segments {
		b.WriteString(s.text)
	}
	return b.String()
}

// Save copies the file currently on disk to BackupPath, then atomically
// replaces the file with the document. The file keeps its permission bits.
func (d *Document) Save() error {
	if d.path == "" {
		return fmt.Errorf("%w: document has no path", ErrWrite)
	}
	mode := atomicfile.Mode(d.path, 0o644)
	if err := atomicfile.Backup(d.path, d.backupPath); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := atomicfile.WriteFile(d.path, d.Bytes(), mode); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// find returns the segment index of name's declaration, or -1.
func (d *Document) find(name string) (int, error) {
	idx := -1
	for i, s := range d.segments {
		if !s.isDecl || s.name != name {
			continue
		}
		if idx >= 0 {
			return -1, fmt.Errorf("%w: %s", ErrDuplicate, name)
		}
		idx = i
	}
	return idx, nil
}

// lineSeparator follows the document's own convention.
func (d *Document) lineSeparator() string {
	for _, s := range d.segments {
		if strings.Contains(s.text, "\r\n") {
			return "\r\n"
		}
	}
	return "\n"
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "\"\\\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
