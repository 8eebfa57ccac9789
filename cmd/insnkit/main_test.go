package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/insnkit/insn"
	"github.com/chazu/insnkit/manifest"
	"github.com/chazu/insnkit/model"
	"github.com/chazu/insnkit/selector"
	"github.com/chazu/insnkit/store"
)

func testArchive(t *testing.T) *model.Archive {
	t.Helper()
	body := func(nodes ...insn.Insn) *insn.List {
		l, err := insn.NewList(nodes...)
		if err != nil {
			t.Fatal(err)
		}
		return l
	}
	a := &model.Class{Name: "pkg/A", Super: "java/lang/Object", Methods: []*model.Method{
		{Name: "sum", Desc: "(II)I", MaxStack: 2, MaxLocals: 3, Code: body(
			insn.NewVar(insn.OpIload, 1),
			insn.NewVar(insn.OpIload, 2),
			insn.NewPlain(insn.OpIadd),
			insn.NewPlain(insn.OpIreturn),
		)},
		{Name: "twice", Desc: "(I)I", MaxStack: 2, MaxLocals: 2, Code: body(
			insn.NewVar(insn.OpIload, 1),
			insn.NewVar(insn.OpIload, 1),
			insn.NewPlain(insn.OpIadd),
			insn.NewPlain(insn.OpIreturn),
		)},
		{Name: "run", Desc: "()V", Access: model.AccAbstract},
	}}
	b := &model.Class{Name: "pkg/B", Super: "pkg/A", Methods: []*model.Method{
		{Name: "nop", Desc: "()V", Code: body(insn.NewPlain(insn.OpReturn))},
	}}
	return model.NewArchive(a, b)
}

func TestParseRename(t *testing.T) {
	tests := []struct {
		in       string
		from, to string
		wantErr  bool
	}{
		{"a/a=game/Client", "a/a", "game/Client", false},
		{" a/b = game/World ", "a/b", "game/World", false},
		{"a/a", "", "", true},
		{"=x", "", "", true},
		{"x=", "", "", true},
	}
	for _, tt := range tests {
		from, to, err := parseRename(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRename(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if from != tt.from || to != tt.to {
			t.Errorf("parseRename(%q) = %q, %q, want %q, %q", tt.in, from, to, tt.from, tt.to)
		}
	}
}

func TestRenamesFlag(t *testing.T) {
	r := renames{}
	if err := r.Set("b/b=Second"); err != nil {
		t.Fatal(err)
	}
	if err := r.Set("a/a=First"); err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != "a/a=First,b/b=Second" {
		t.Errorf("String() = %q", got)
	}
	if err := r.Set("broken"); err == nil {
		t.Error("Set accepted a value without '='")
	}
}

func TestSearchArchive(t *testing.T) {
	a := testArchive(t)
	q := selector.MustCompile("iload iadd[dist=2]")

	got := searchArchive(a, q, methodFilter{})
	want := []store.Finding{
		{Class: "pkg/A", Method: "sum(II)I", Index: 0, Text: "iload 1; iadd"},
		{Class: "pkg/A", Method: "sum(II)I", Index: 1, Text: "iload 2; iadd"},
		{Class: "pkg/A", Method: "twice(I)I", Index: 0, Text: "iload 1; iadd"},
		{Class: "pkg/A", Method: "twice(I)I", Index: 1, Text: "iload 1; iadd"},
	}
	if len(got) != len(want) {
		t.Fatalf("findings = %+v, want %d", got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("finding %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	got = searchArchive(a, q, methodFilter{method: "twice"})
	if len(got) != 2 {
		t.Errorf("filtered findings = %+v, want 2", got)
	}
	got = searchArchive(a, q, methodFilter{class: "pkg/B"})
	if len(got) != 0 {
		t.Errorf("pkg/B findings = %+v, want none", got)
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	if err := dump(&buf, testArchive(t), methodFilter{class: "pkg/A", method: "sum(II)I"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "pkg/A.sum(II)I  (stack 2, locals 3)\n") {
		t.Errorf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "iadd") || strings.Contains(out, "twice") {
		t.Errorf("unexpected dump:\n%s", out)
	}
}

func TestPrintFlow(t *testing.T) {
	var buf bytes.Buffer
	if err := printFlow(&buf, testArchive(t), methodFilter{class: "pkg/B"}, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "pkg/B.nop()V  (1 blocks)") {
		t.Errorf("unexpected flow output:\n%s", out)
	}
	if !strings.Contains(out, "B0  preds=[] succs=[]") {
		t.Errorf("entry block line missing:\n%s", out)
	}
}

func TestQuerySource(t *testing.T) {
	e := &env{manifest: &manifest.Manifest{Queries: map[string]string{"adds": "iadd"}}}

	if src, err := e.querySource("adds", nil); err != nil || src != "iadd" {
		t.Errorf("named = %q, %v", src, err)
	}
	if _, err := e.querySource("missing", nil); err == nil {
		t.Error("unknown named query accepted")
	}
	if src, err := e.querySource("", []string{"iload", "iadd"}); err != nil || src != "iload iadd" {
		t.Errorf("positional = %q, %v", src, err)
	}
	if _, err := (&env{}).querySource("", nil); err == nil {
		t.Error("empty query accepted")
	}
}

func TestTransformNames(t *testing.T) {
	if got := (&env{}).transformNames(""); len(got) != 1 || got[0] != "flow" {
		t.Errorf("default = %v", got)
	}
	e := &env{manifest: &manifest.Manifest{Transforms: manifest.Transforms{Enabled: []string{"dead-code"}}}}
	if got := e.transformNames(""); len(got) != 1 || got[0] != "dead-code" {
		t.Errorf("manifest = %v", got)
	}
	if got := e.transformNames(" flow, trace ,"); len(got) != 2 || got[1] != "trace" {
		t.Errorf("flag = %v", got)
	}
}

func TestPipelineRenames(t *testing.T) {
	e := &env{manifest: &manifest.Manifest{Transforms: manifest.Transforms{
		RenameClass: map[string]string{"pkg/A": "game/Base", "pkg/B": "game/Old"},
	}}}
	p, err := e.pipeline([]string{"flow"}, renames{"pkg/B": "game/Child"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 3 {
		t.Fatalf("pipeline length = %d, want 3", p.Len())
	}

	a := testArchive(t)
	if err := p.Apply(a); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(a.Names(), " "); got != "game/Base game/Child" {
		t.Errorf("names = %q", got)
	}
	if c, _ := a.Get("game/Child"); c == nil || c.Super != "game/Base" {
		t.Errorf("child super not rewritten: %+v", c)
	}

	if _, err := e.pipeline([]string{"nope"}, nil, nil); err == nil {
		t.Error("unknown transform accepted")
	}
}

func TestDeobWritesArchive(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.insn")
	out := filepath.Join(dir, "out.insn")
	if err := model.WriteFile(in, testArchive(t)); err != nil {
		t.Fatal(err)
	}

	e := &env{verbosity: -1}
	if err := handleDeob(e, []string{"-t", "flow,trace", "-o", out, in}); err != nil {
		t.Fatal(err)
	}
	a, err := model.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	c, _ := a.Get("pkg/B")
	m := c.Method("nop", "()V")
	if idx, _ := selector.IndexOf(m.Code, "getstatic ldc invokevirtual[name=println]"); idx < 0 {
		t.Errorf("trace prologue missing:\n%s", insn.Disassemble(m.Code))
	}
}

func TestParseFieldRef(t *testing.T) {
	tests := []struct {
		in           string
		owner, field string
		wantErr      bool
	}{
		{"pkg/A.count", "pkg/A", "count", false},
		{"a.b", "a", "b", false},
		{"count", "", "", true},
		{".count", "", "", true},
		{"pkg/A.", "", "", true},
	}
	for _, tt := range tests {
		owner, field, err := parseFieldRef(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFieldRef(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if owner != tt.owner || field != tt.field {
			t.Errorf("parseFieldRef(%q) = %q, %q, want %q, %q", tt.in, owner, field, tt.owner, tt.field)
		}
	}
}

func TestPipelineFieldRenames(t *testing.T) {
	get := insn.NewField(insn.OpGetfield, "pkg/A", "c", "I")
	body, err := insn.NewList(insn.NewVar(insn.OpAload, 0), get, insn.NewPlain(insn.OpIreturn))
	if err != nil {
		t.Fatal(err)
	}
	a := model.NewArchive(&model.Class{
		Name:    "pkg/A",
		Fields:  []*model.Field{{Name: "c", Desc: "I"}},
		Methods: []*model.Method{{Name: "get", Desc: "()I", Code: body}},
	})

	e := &env{manifest: &manifest.Manifest{Transforms: manifest.Transforms{
		RenameField: map[string]string{"pkg/A.c": "old"},
	}}}
	p, err := e.pipeline(nil, renames{"pkg/A": "game/Counter"}, renames{"pkg/A.c": "count"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Fatalf("pipeline length = %d, want 2", p.Len())
	}
	if err := p.Apply(a); err != nil {
		t.Fatal(err)
	}

	c, ok := a.Get("game/Counter")
	if !ok {
		t.Fatalf("class not renamed: %v", a.Names())
	}
	if c.Fields[0].Name != "count" {
		t.Errorf("field = %q, want count", c.Fields[0].Name)
	}
	if get.Owner != "game/Counter" || get.Name != "count" {
		t.Errorf("getfield = %s", insn.Format(get))
	}

	if _, err := e.pipeline(nil, nil, renames{"nodot": "x"}); err == nil {
		t.Error("field reference without owner accepted")
	}
}
