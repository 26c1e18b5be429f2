package main

import (
	"strings"
	"testing"
)

func TestRenderTableRightAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		[]string{"#", "Title"},
		[][]string{
			{"9", "Intro"},
			{"10", "Finale"},
		},
		1,
	)

	for _, want := range []string{"#", "Title", "Intro", "Finale"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected rendered table to contain %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, " 9 │") {
		t.Fatalf("expected column 1 to be right-aligned:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"Field", "Value"},
		[][]string{{"Narrator"}},
	)
	if !strings.Contains(out, "Narrator") {
		t.Fatalf("expected rendered table to contain the row:\n%s", out)
	}
}

func TestRenderTableWithoutHeaders(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
