package records

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dgallion1/secpolicy/internal/doctree"
)

func TestConstruct_ApprovedAlgorithm(t *testing.T) {
	rec, err := Construct(KindApprovedAlgorithm, []string{"AES-CBC", "A3548", "-", "SP 800-38A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := rec.(ApprovedAlgorithm)
	if !ok {
		t.Fatalf("expected ApprovedAlgorithm, got %T", rec)
	}
	want := ApprovedAlgorithm{Algorithm: "AES-CBC", CAVPCertName: "A3548", Properties: "-", Reference: "SP 800-38A"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestConstruct_RoundTripEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			cells := make([]string, k.Arity())
			for i := range cells {
				cells[i] = fmt.Sprintf(" cell %d – %s ", i, k)
			}
			rec, err := Construct(k, cells)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Kind() != k {
				t.Errorf("Kind() = %s, want %s", rec.Kind(), k)
			}
			values := rec.Values()
			if len(values) != len(cells) {
				t.Fatalf("got %d values, want %d", len(values), len(cells))
			}
			for i := range cells {
				if values[i] != cells[i] {
					t.Errorf("value %d = %q, want %q", i, values[i], cells[i])
				}
			}
			m := Map(rec)
			for i, f := range k.Fields() {
				if m[f] != cells[i] {
					t.Errorf("Map()[%s] = %q, want %q", f, m[f], cells[i])
				}
			}
		})
	}
}

func TestConstruct_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		cells []string
	}{
		{"too few", KindApprovedAlgorithm, []string{"AES", "A1", "-"}},
		{"too many", KindNonApprovedNotAllowed, []string{"DES", "legacy", "extra"}},
		{"empty first", KindRole, []string{" ", "Role", "CO", "Password"}},
		{"line break", KindEntropyCertificate, []string{"Acme", "E12\nE13"}},
		{"unknown kind", KindUnknown, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Construct(tt.kind, tt.cells)
			if err == nil {
				t.Fatalf("expected error, got %+v", rec)
			}
			var se *ShapeError
			if !errors.As(err, &se) {
				t.Errorf("expected *ShapeError, got %T", err)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
		if len(k.String()) > 31 {
			t.Errorf("slug %q is longer than a sheet name allows", k.String())
		}
	}
	if _, err := ParseKind("nope"); err == nil {
		t.Error("expected error for unknown slug")
	}

	var k Kind
	if err := k.UnmarshalText([]byte("role")); err != nil || k != KindRole {
		t.Errorf("UnmarshalText: %v, %v", k, err)
	}
}

func TestRegistry_Names(t *testing.T) {
	names := DefaultRegistry().Names(doctree.Position{Chapter: 2, Sub: 5})
	want := []string{
		"Approved Algorithms",
		"Vendor-Affirmed Algorithms",
		"Non-Approved, Allowed Algorithms",
		"Non-Approved, Allowed Algorithms with No Security Claimed",
		"Non-Approved, Not Allowed Algorithms",
	}
	if len(names) != len(want) {
		t.Fatalf("got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, names[i], want[i])
		}
	}
	if n := DefaultRegistry().Names(doctree.Position{Chapter: 2, Sub: 4}); len(n) != 0 {
		t.Errorf("expected no names for 2.4, got %v", n)
	}
}

func TestRegistry_Validate(t *testing.T) {
	sections := &doctree.Tree{Chapters: []*doctree.Node{
		{Title: "General", Children: []*doctree.Node{{Title: "Overview"}, {Title: "Security Levels"}}},
	}}

	ok := Registry{{Kind: KindSecurityLevel, Position: doctree.Position{Chapter: 1, Sub: 2}}}
	if err := ok.Validate(sections); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	dup := Registry{
		{Kind: KindSecurityLevel, Position: doctree.Position{Chapter: 1, Sub: 2}},
		{Kind: KindSecurityLevel, Position: doctree.Position{Chapter: 1, Sub: 1}},
	}
	if err := dup.Validate(sections); err == nil {
		t.Error("expected duplicate kind error")
	}

	outside := Registry{{Kind: KindRole, Position: doctree.Position{Chapter: 4, Sub: 2}}}
	if err := outside.Validate(sections); err == nil {
		t.Error("expected position error")
	}
}
