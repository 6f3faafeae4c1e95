package token

import "testing"

func TestMakePosLineCol(t *testing.T) {
	cases := []struct {
		line, col int
	}{
		{1, 1},
		{42, 7},
		{MaxLines, MaxCols},
	}
	for _, c := range cases {
		p := MakePos(c.line, c.col)
		gotLine, gotCol := p.LineCol()
		if gotLine != c.line || gotCol != c.col {
			t.Errorf("MakePos(%d, %d).LineCol() = (%d, %d), want (%d, %d)",
				c.line, c.col, gotLine, gotCol, c.line, c.col)
		}
	}
}

func TestPosUnknown(t *testing.T) {
	if !Pos(0).Unknown() {
		t.Error("zero Pos should be unknown")
	}
	if MakePos(1, 1).Unknown() {
		t.Error("MakePos(1, 1) should not be unknown")
	}
}

func TestFileSetIntern(t *testing.T) {
	fs := NewFileSet()
	a := fs.Intern("a.src")
	b := fs.Intern("b.src")
	aAgain := fs.Intern("a.src")

	if a != aAgain {
		t.Errorf("interning the same name twice should return the same index: %d != %d", a, aAgain)
	}
	if a == b {
		t.Error("distinct names should get distinct indices")
	}
	if fs.Name(a) != "a.src" || fs.Name(b) != "b.src" {
		t.Errorf("Name lookup mismatch: %q, %q", fs.Name(a), fs.Name(b))
	}
}

func TestPositionString(t *testing.T) {
	fs := NewFileSet()
	i := fs.Intern("foo.src")

	pos := fs.Position(i, MakePos(3, 5))
	if got, want := pos.String(), "foo.src:3:5"; got != want {
		t.Errorf("Position.String() = %q, want %q", got, want)
	}

	unknown := fs.Position(i, Pos(0))
	if got, want := unknown.String(), "foo.src"; got != want {
		t.Errorf("Position.String() with unknown pos = %q, want %q", got, want)
	}
}
