package template

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveValue(t *testing.T) {
	got, err := Resolve(ValueSpec{Value: "World"}, "/nowhere")
	if err != nil {
		t.Fatalf("resolve value: %v", err)
	}
	if got != "World" {
		t.Fatalf("expected World, got %q", got)
	}
}

func TestResolveEmptyValueIsValid(t *testing.T) {
	got, err := Resolve(ValueSpec{}, "/nowhere")
	if err != nil {
		t.Fatalf("resolve empty value: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestResolveFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "data"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "data", "code.py"), []byte("print('hi')\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := Resolve(FileSpec{Path: "data/code.py"}, root)
	if err != nil {
		t.Fatalf("resolve file: %v", err)
	}
	if got != "print('hi')\n" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestResolveFileNotFound(t *testing.T) {
	_, err := Resolve(FileSpec{Path: "no/such/file.txt"}, t.TempDir())
	var re *ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ResolveError, got %v", err)
	}
	if re.Kind != ErrFileNotFound {
		t.Fatalf("expected %s, got %s", ErrFileNotFound, re.Kind)
	}
}

func TestResolveFileNotText(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "blob.bin"), []byte{0xff, 0xfe, 0x00, 0x80}, 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := Resolve(FileSpec{Path: "blob.bin"}, root)
	var re *ResolveError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ResolveError, got %v", err)
	}
	if re.Kind != ErrFileUnreadable {
		t.Fatalf("expected %s, got %s", ErrFileUnreadable, re.Kind)
	}
}

func TestResolveRereadsFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "v.txt")
	if err := os.WriteFile(path, []byte("one"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	spec := FileSpec{Path: "v.txt"}
	if got, _ := Resolve(spec, root); got != "one" {
		t.Fatalf("expected one, got %q", got)
	}

	if err := os.WriteFile(path, []byte("two"), 0644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	if got, _ := Resolve(spec, root); got != "two" {
		t.Fatalf("external edit not picked up, got %q", got)
	}
}

func TestVarConfigSpec(t *testing.T) {
	if _, err := (VarConfig{Type: "file"}).Spec(); err == nil {
		t.Fatalf("expected error for file config without path")
	}
	if _, err := (VarConfig{Type: "secret"}).Spec(); err == nil {
		t.Fatalf("expected error for unknown type")
	}

	spec, err := (VarConfig{Type: "value", Value: "x"}).Spec()
	if err != nil {
		t.Fatalf("value spec: %v", err)
	}
	if v, ok := spec.(ValueSpec); !ok || v.Value != "x" {
		t.Fatalf("unexpected spec: %#v", spec)
	}
}

func TestBuildNamespace(t *testing.T) {
	ns, err := BuildNamespace(map[string]VarConfig{
		"code": {Type: "file", Path: "a.txt"},
		"hint": {Type: "value", Value: "short"},
	})
	if err != nil {
		t.Fatalf("build namespace: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ns))
	}

	if _, err := BuildNamespace(map[string]VarConfig{"bad": {Type: "nope"}}); err == nil {
		t.Fatalf("expected error for bad entry")
	}
}
