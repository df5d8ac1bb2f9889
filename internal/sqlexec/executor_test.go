package sqlexec

import "testing"

func TestNamedPlaceholderTranslation(t *testing.T) {
	sql := "SELECT * FROM colles WHERE name = %(colla)s AND year = %(year)s"
	got := namedPlaceholder.ReplaceAllString(sql, "@$1")
	want := "SELECT * FROM colles WHERE name = @colla AND year = @year"
	if got != want {
		t.Errorf("named placeholder translation = %q, want %q", got, want)
	}
}

func TestNamedPlaceholderLeavesPlainSQLUnchanged(t *testing.T) {
	sql := "SELECT * FROM colles WHERE name = ?"
	if got := namedPlaceholder.ReplaceAllString(sql, "@$1"); got != sql {
		t.Errorf("expected no change for %q, got %q", sql, got)
	}
}

func TestRowGet(t *testing.T) {
	row := Row{Columns: []string{"castell_name", "status"}, Values: []any{"4d9f", "Descarregat"}}

	v, ok := row.Get("status")
	if !ok || v != "Descarregat" {
		t.Errorf("row.Get(status) = (%v, %v), want (Descarregat, true)", v, ok)
	}

	if _, ok := row.Get("missing"); ok {
		t.Error("expected ok=false for a column that doesn't exist")
	}
}

func TestRowString(t *testing.T) {
	row := Row{Columns: []string{"a"}, Values: []any{1}}
	if row.String() != "[1]" {
		t.Errorf("row.String() = %q, want %q", row.String(), "[1]")
	}
}
