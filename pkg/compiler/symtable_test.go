package compiler

import (
	"strings"
	"testing"
)

func TestSymbolTableInsertAndLookup(t *testing.T) {
	c := NewTypeCache()
	tbl := NewSymbolTable(nil)

	if err := tbl.Insert(&Symbol{Name: "x", Kind: VARIABLE, Type: c.Integer()}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	sym, ok := tbl.Lookup("x")
	if !ok {
		t.Fatal("expected to find x")
	}
	if sym.Kind != VARIABLE {
		t.Errorf("got kind %s, want VARIABLE", sym.Kind)
	}

	if err := tbl.Insert(&Symbol{Name: "x", Kind: VARIABLE, Type: c.Integer()}); err == nil {
		t.Error("expected redeclaration of x to fail")
	}
}

func TestSymbolTableLookupThroughParent(t *testing.T) {
	c := NewTypeCache()
	parent := NewSymbolTable(nil)
	parent.Insert(&Symbol{Name: "outer", Kind: VARIABLE, Type: c.Integer()})

	child := NewSymbolTable(parent)
	if !child.Exists("outer") {
		t.Error("child scope should see outer's symbols")
	}
	if child.Depth() != 1 || parent.Depth() != 0 {
		t.Errorf("got child depth %d, parent depth %d", child.Depth(), parent.Depth())
	}
}

func TestSymbolTableTotalSizeOnlyCountsLocalStorage(t *testing.T) {
	c := NewTypeCache()
	parent := NewSymbolTable(nil)
	parent.Insert(&Symbol{Name: "outer", Kind: VARIABLE, Type: c.Integer()})

	child := NewSymbolTable(parent)
	child.Insert(&Symbol{Name: "a", Kind: VARIABLE, Type: c.Integer()})
	child.Insert(&Symbol{Name: "b", Kind: CONST, Type: c.Integer()})
	child.Insert(&Symbol{Name: "T", Kind: TYPE, Type: c.Integer()})

	if got, want := child.TotalSize(), 16; got != want {
		t.Errorf("TotalSize() = %d, want %d (TYPE symbols reserve no storage of their own)", got, want)
	}
}

func TestSymbolTablePrintRecordFieldsBeforeRecord(t *testing.T) {
	c := NewTypeCache()
	global := NewSymbolTable(nil)

	fields := NewSymbolTable(global)
	fields.Insert(&Symbol{Name: "x", Kind: RECORD_FIELD, Type: c.Integer(), Offset: 0})
	fields.Insert(&Symbol{Name: "y", Kind: RECORD_FIELD, Type: c.Integer(), Offset: 8})
	recType := NewRecordType(fields)

	global.Insert(&Symbol{Name: "p", Kind: VARIABLE, Type: recType})

	var b strings.Builder
	global.Print(&b)
	out := b.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], ",FIELD,x,") || !strings.Contains(lines[1], ",FIELD,y,") {
		t.Errorf("field lines should precede the record's own line:\n%s", out)
	}
	if !strings.Contains(lines[2], ",VAR,p,RECORD") {
		t.Errorf("record's own line should come last:\n%s", out)
	}
}
