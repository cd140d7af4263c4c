package domain

import (
	"errors"
	"testing"
)

func TestAllocate(t *testing.T) {
	nodes := []Node{
		stage("s1", "1"),
		stage("s11", "1.1"),
		stage("s12", "1.2"),
		item("i121", "1.2.1"),
		item("i122", "1.2.2"),
		item("i123", "1.2.3"),
		stage("s2", "2"),
	}

	tests := []struct {
		name    string
		target  string
		rel     Relation
		want    string
		wantErr error
	}{
		{"root appends after the last root", "", RelationRoot, "3", nil},
		{"root ignores the target", "i121", RelationRoot, "3", nil},
		{"first child of an empty stage", "s11", RelationChild, "1.1.1", nil},
		{"child after existing children", "s12", RelationChild, "1.2.4", nil},
		{"sibling of the last item", "i123", RelationSibling, "1.2.4", nil},
		{"sibling of the first item", "i121", RelationSibling, "1.2.4", nil},
		{"sibling of a root", "s1", RelationSibling, "3", nil},
		{"sibling without target is a root", "", RelationSibling, "3", nil},
		{"replace keeps the path", "i122", RelationReplace, "1.2.2", nil},
		{"child of an item", "i121", RelationChild, "", ErrNotStage},
		{"sibling of unknown", "zz", RelationSibling, "", ErrNotFound},
		{"replace unknown", "zz", RelationReplace, "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(nodes, tt.target, tt.rel)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextRootPath_Empty(t *testing.T) {
	if got := NextRootPath(nil); got != "1" {
		t.Errorf("got %q, want \"1\"", got)
	}
}

func TestNextSiblingPath_NumericLast(t *testing.T) {
	nodes := []Node{
		stage("s", "1"),
		item("a", "1.2"),
		item("b", "1.10"),
		item("c", "1.9"),
	}
	got, err := NextSiblingPath(nodes, "a")
	if err != nil {
		t.Fatalf("NextSiblingPath failed: %v", err)
	}
	if got != "1.11" {
		t.Errorf("got %q, want \"1.11\"", got)
	}
}

func TestInsertAllocated(t *testing.T) {
	nodes := sampleBudget()

	path, err := Allocate(nodes, "b", RelationChild)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	got, err := InsertAllocated(nodes, item("new", path))
	if err != nil {
		t.Fatalf("InsertAllocated failed: %v", err)
	}
	if p := pathsByID(got)["new"]; p != "1.1.3" {
		t.Errorf("got path %q, want \"1.1.3\"", p)
	}
	assertInvariants(t, got)

	if _, err := InsertAllocated(nodes, item("bad", "1.2.1")); !errors.Is(err, ErrItemHasNoChildren) {
		t.Errorf("expected ErrItemHasNoChildren, got %v", err)
	}
	if _, err := InsertAllocated(nodes, item("bad", "7.1")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := InsertAllocated(nodes, item("bad", "x")); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}
