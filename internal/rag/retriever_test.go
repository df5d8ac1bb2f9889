package rag

import (
	"strings"
	"testing"
)

func TestAssembleContextNumbersDocumentsInOrder(t *testing.T) {
	docs := []Document{
		{ID: "1", Text: "El pilar de 4 és una estructura senzilla."},
		{ID: "2", Text: "El 3d9f requereix folre i manilles."},
	}
	got := AssembleContext(docs)

	if !strings.HasPrefix(got, "[Document 1]\nEl pilar de 4") {
		t.Errorf("expected first block to start with [Document 1], got %q", got)
	}
	if idx := strings.Index(got, "[Document 2]"); idx == -1 {
		t.Errorf("expected a [Document 2] block, got %q", got)
	}
	if strings.Index(got, "[Document 1]") > strings.Index(got, "[Document 2]") {
		t.Error("documents must be numbered in input order")
	}
}

func TestAssembleContextEmpty(t *testing.T) {
	if got := AssembleContext(nil); got != "" {
		t.Errorf("AssembleContext(nil) = %q, want empty string", got)
	}
}

func TestAssembleContextSingleDocumentHasNoSeparator(t *testing.T) {
	got := AssembleContext([]Document{{ID: "1", Text: "text"}})
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("unexpected extra blank lines: %q", got)
	}
}

func TestPgvectorLiteralFormat(t *testing.T) {
	got := pgvectorLiteral([]float64{0.1, -0.5, 1})
	want := "[0.1,-0.5,1]"
	if got != want {
		t.Errorf("pgvectorLiteral = %q, want %q", got, want)
	}
}

func TestPgvectorLiteralEmpty(t *testing.T) {
	if got := pgvectorLiteral(nil); got != "[]" {
		t.Errorf("pgvectorLiteral(nil) = %q, want %q", got, "[]")
	}
}
