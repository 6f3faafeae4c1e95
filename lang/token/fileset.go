package token

import "fmt"

// Position is a human-readable source location: a file name plus the
// line/col pair encoded in a Pos. It is attached to IR instructions so
// that the emission core can record source-location ranges for the
// produced unit.
type Position struct {
	Filename string
	Pos      Pos
}

// String formats the position as "file:line:col", or just "file" if the
// line/col is unknown.
func (p Position) String() string {
	if p.Pos.Unknown() {
		return p.Filename
	}
	line, col := p.Pos.LineCol()
	return fmt.Sprintf("%s:%d:%d", p.Filename, line, col)
}

// A FileSet is a registry of file names that assigns each name a small
// stable index and resolves an index back to a Position on demand. lang/ir
// does not use it: its source-location table stores Position values,
// each carrying its file name as a string. This is
// deliberately much narrower than a full line-oriented FileSet: the
// emission core never re-lexes source text, it only carries positions
// already computed upstream (by the optimizer that produced the IR).
type FileSet struct {
	files []string
	index map[string]int
}

// NewFileSet returns an empty file set.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]int)}
}

// Intern registers name (if not already present) and returns its stable
// index in the set.
func (fs *FileSet) Intern(name string) int {
	if i, ok := fs.index[name]; ok {
		return i
	}
	i := len(fs.files)
	fs.files = append(fs.files, name)
	fs.index[name] = i
	return i
}

// Name returns the file name registered at index i. It panics if i is out
// of range, since an out-of-range file index indicates IR malformation
// (the same fatal-contract-violation posture as the rest of the core).
func (fs *FileSet) Name(i int) string {
	return fs.files[i]
}

// Position builds a Position from a file-table index and a packed Pos.
func (fs *FileSet) Position(fileIdx int, pos Pos) Position {
	return Position{Filename: fs.Name(fileIdx), Pos: pos}
}
