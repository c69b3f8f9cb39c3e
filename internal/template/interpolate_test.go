package template

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestInterpolateSimple(t *testing.T) {
	ns := Namespace{"name": ValueSpec{Value: "World"}}
	res := Interpolate("Hello {name}", ns, t.TempDir(), DefaultDelimiters())
	if res.Text != "Hello World" {
		t.Fatalf("expected Hello World, got %q", res.Text)
	}
	if len(res.Unmapped) != 0 || len(res.Errors) != 0 {
		t.Fatalf("expected clean result, got %+v", res)
	}
}

func TestInterpolateUnmappedLeftInPlace(t *testing.T) {
	ns := Namespace{"name": ValueSpec{Value: "Bob"}}
	res := Interpolate("Hi {name}, {missing}", ns, t.TempDir(), DefaultDelimiters())
	if res.Text != "Hi Bob, {missing}" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if !reflect.DeepEqual(res.Unmapped, []string{"missing"}) {
		t.Fatalf("unexpected unmapped: %v", res.Unmapped)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestInterpolateResolverFailureKeepsToken(t *testing.T) {
	ns := Namespace{"code": FileSpec{Path: "no/such/file.txt"}}
	res := Interpolate("{code}", ns, t.TempDir(), DefaultDelimiters())
	if res.Text != "{code}" {
		t.Fatalf("expected raw token, got %q", res.Text)
	}
	if res.Errors["code"] != ErrFileNotFound {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Unmapped) != 0 {
		t.Fatalf("unexpected unmapped: %v", res.Unmapped)
	}
}

func TestInterpolateReplacesEveryOccurrence(t *testing.T) {
	ns := Namespace{"x": ValueSpec{Value: "1"}}
	res := Interpolate("{x}+{x}={x}{x}", ns, t.TempDir(), DefaultDelimiters())
	if res.Text != "1+1=11" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestInterpolateNoRecursiveExpansion(t *testing.T) {
	ns := Namespace{
		"outer": ValueSpec{Value: "see {inner}"},
		"inner": ValueSpec{Value: "must not appear"},
	}
	res := Interpolate("{outer}", ns, t.TempDir(), DefaultDelimiters())
	if res.Text != "see {inner}" {
		t.Fatalf("resolved value was re-expanded: %q", res.Text)
	}
	if !res.OK() {
		t.Fatalf("expected clean result, got %+v", res)
	}
}

func TestInterpolateInjectionStaysLiteral(t *testing.T) {
	// A value that contains another variable's token must not pick up that
	// variable's value, regardless of substitution order.
	ns := Namespace{
		"a": ValueSpec{Value: "{b}"},
		"b": ValueSpec{Value: "boom"},
	}
	res := Interpolate("{a} {b}", ns, t.TempDir(), DefaultDelimiters())
	if res.Text != "{b} boom" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestInterpolateEmptyTemplate(t *testing.T) {
	res := Interpolate("", Namespace{}, t.TempDir(), DefaultDelimiters())
	if res.Text != "" || len(res.Unmapped) != 0 || len(res.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestInterpolateNoPlaceholdersIdempotent(t *testing.T) {
	tmpl := "plain text, no placeholders at all"
	res := Interpolate(tmpl, Namespace{"unused": ValueSpec{Value: "x"}}, t.TempDir(), DefaultDelimiters())
	if res.Text != tmpl {
		t.Fatalf("template changed: %q", res.Text)
	}
	if !res.OK() {
		t.Fatalf("expected clean result, got %+v", res)
	}
}

func TestInterpolateEmptyValue(t *testing.T) {
	ns := Namespace{"gone": ValueSpec{Value: ""}}
	res := Interpolate("[{gone}]", ns, t.TempDir(), DefaultDelimiters())
	if res.Text != "[]" {
		t.Fatalf("empty value should substitute, got %q", res.Text)
	}
	if !res.OK() {
		t.Fatalf("empty value must not be an error: %+v", res)
	}
}

func TestInterpolateFileVariable(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "snippet.txt"), []byte("def f(): pass"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	ns := Namespace{"code": FileSpec{Path: "snippet.txt"}}
	res := Interpolate("Review this:\n{code}", ns, root, DefaultDelimiters())
	if res.Text != "Review this:\ndef f(): pass" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestInterpolateEveryIdentifierLandsInOneBucket(t *testing.T) {
	root := t.TempDir()
	ns := Namespace{
		"ok":     ValueSpec{Value: "fine"},
		"broken": FileSpec{Path: "missing.txt"},
	}
	tmpl := "{ok} {broken} {unmapped} {ok}"
	res := Interpolate(tmpl, ns, root, DefaultDelimiters())

	buckets := 0
	for _, name := range DefaultDelimiters().Extract(tmpl) {
		n := 0
		if res.HasUnmapped(name) {
			n++
		}
		if _, ok := res.Errors[name]; ok {
			n++
		}
		if n == 0 {
			n = 1 // substituted
		}
		buckets += n
	}
	if buckets != 3 {
		t.Fatalf("identifiers must land in exactly one bucket each, got %d for 3 names", buckets)
	}
	if res.Text != "fine {broken} {unmapped} fine" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}
