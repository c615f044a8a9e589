package domain

import (
	"reflect"
	"testing"
)

func TestGroupAtLeast(t *testing.T) {
	tests := []struct {
		name  string
		group Group
		other Group
		want  bool
	}{
		{"guest below trusted", GroupGuest, GroupTrusted, false},
		{"guest at guest", GroupGuest, GroupGuest, true},
		{"trusted at trusted", GroupTrusted, GroupTrusted, true},
		{"trusted below admin", GroupTrusted, GroupAdmin, false},
		{"admin above trusted", GroupAdmin, GroupTrusted, true},
		{"admin at admin", GroupAdmin, GroupAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.group.AtLeast(tt.other); got != tt.want {
				t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.group, tt.other, got, tt.want)
			}
		})
	}
}

func TestGroupValid(t *testing.T) {
	if !GroupTrusted.Valid() {
		t.Error("Expected trusted to be valid")
	}
	if Group("superuser").Valid() {
		t.Error("Expected unknown group to be invalid")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  StringSlice
	}{
		{"two entries", "A, B", StringSlice{"A", "B"}},
		{"single entry", "Brandon Sanderson", StringSlice{"Brandon Sanderson"}},
		{"empty input", "", StringSlice{}},
		{"whitespace only", "   ", StringSlice{}},
		{"trailing comma", "A,", StringSlice{"A"}},
		{"no space after comma", "A,B,C", StringSlice{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitList(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStringSliceScan(t *testing.T) {
	var s StringSlice
	if err := s.Scan(`["A","B"]`); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(s) != 2 || s[0] != "A" || s[1] != "B" {
		t.Errorf("Expected [A B], got %v", s)
	}

	var empty StringSlice
	if err := empty.Scan("[]"); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty slice, got %v", empty)
	}

	v, err := StringSlice{}.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != "[]" {
		t.Errorf("Expected empty slice to store as [], got %v", v)
	}
}
