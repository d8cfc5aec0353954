package normalize

import (
	"encoding/json"
	"reflect"
	"testing"
)

func row(cells ...string) RawRow {
	return RawRow{Cells: cells}
}

func headerRow(cells ...string) RawRow {
	return RawRow{Cells: cells, Header: true}
}

func TestNormalizeTableEmptyEntry(t *testing.T) {
	got := NormalizeTable(RawTableEntry{})
	if !got.Empty() {
		t.Fatalf("expected empty result, got %+v", got)
	}

	got = NormalizeTable(RawTableEntry{Title: "  Tax Summary  "})
	if got.Title != "Tax Summary" {
		t.Fatalf("title=%q", got.Title)
	}
	if got.Headers != nil || got.Fields != nil || got.Records != nil || got.Rows != nil {
		t.Fatalf("title-only entry should carry nothing else: %+v", got)
	}
}

func TestNormalizeTableRecordOverKeyValue(t *testing.T) {
	// A two-cell row matching the header width is a record even when its
	// first cell reads like a label.
	entry := RawTableEntry{Rows: []RawRow{
		headerRow("Name", "Age"),
		row("Name", "42"),
	}}
	got := NormalizeTable(entry)
	if got.Fields != nil {
		t.Fatalf("fields should be empty: %+v", got.Fields)
	}
	if len(got.Records) != 1 {
		t.Fatalf("records=%d", len(got.Records))
	}
	v, _ := got.Records[0].Get("Name")
	if v.First() != "Name" {
		t.Fatalf("record Name=%q", v.First())
	}
}

func TestNormalizeTableLaterHeaderWins(t *testing.T) {
	entry := RawTableEntry{Rows: []RawRow{
		headerRow("Year", "Amount"),
		row("2023", "$100.00"),
		headerRow("Jurisdiction", "Rate", "Levy"),
		row("County", "0.35", "$250.00"),
		row("2024", "$110.00"),
	}}
	got := NormalizeTable(entry)

	if !reflect.DeepEqual(got.Headers, []string{"Jurisdiction", "Rate", "Levy"}) {
		t.Fatalf("headers=%v", got.Headers)
	}
	// Two records matched the first band, one matched the second. The
	// 2-wide row after the band switch no longer matches headers and falls
	// to the key/value path.
	if len(got.Records) != 2 {
		t.Fatalf("records=%d", len(got.Records))
	}
	if v, _ := got.Records[0].Get("Year"); v.First() != "2023" {
		t.Fatalf("first record=%+v", got.Records[0])
	}
	if v, _ := got.Records[1].Get("Jurisdiction"); v.First() != "County" {
		t.Fatalf("second record=%+v", got.Records[1])
	}
	if v, _ := got.Fields.Get("2024"); v.First() != "$110.00" {
		t.Fatalf("fields=%+v", got.Fields)
	}
}

func TestNormalizeTableKeyValueAccumulation(t *testing.T) {
	entry := RawTableEntry{Rows: []RawRow{
		row("Exemption:", "Homestead"),
		row("Exemption:", "Over 65"),
		row("Exemption:", "Disabled Veteran"),
		row("Owner:", "SMITH JOHN"),
	}}
	got := NormalizeTable(entry)

	v, ok := got.Fields.Get("Exemption")
	if !ok || !v.IsList() {
		t.Fatalf("exemption=%+v ok=%v", v, ok)
	}
	if !reflect.DeepEqual(v.Values(), []string{"Homestead", "Over 65", "Disabled Veteran"}) {
		t.Fatalf("values=%v", v.Values())
	}
	if v, _ := got.Fields.Get("Owner"); v.IsList() || v.First() != "SMITH JOHN" {
		t.Fatalf("owner=%+v", v)
	}
}

func TestNormalizeTableResidualAndBlankRows(t *testing.T) {
	entry := RawTableEntry{Rows: []RawRow{
		{Cells: []string{"  ", "", "\t"}},
		row("a", "b", "c"),
		row("only one cell"),
	}}
	got := NormalizeTable(entry)

	if got.Fields != nil || got.Records != nil {
		t.Fatalf("unexpected classification: %+v", got)
	}
	want := [][]string{{"a", "b", "c"}, {"only one cell"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows=%v", got.Rows)
	}
}

func TestNormalizeTablesDropsEmptyEntries(t *testing.T) {
	entries := []RawTableEntry{
		{},
		{Title: "Kept", Rows: []RawRow{row("k:", "v")}},
		{Rows: []RawRow{{Cells: []string{" ", ""}}}},
	}
	got := NormalizeTables(entries)
	if len(got) != 1 || got[0].Title != "Kept" {
		t.Fatalf("got=%+v", got)
	}
}

func TestNormalizedTableJSONRoundTrip(t *testing.T) {
	entry := RawTableEntry{Title: "Levy Detail", Rows: []RawRow{
		headerRow("Jurisdiction", "Levy"),
		row("County", "$100.00"),
		row("School", "$200.00"),
		row("Note:", "estimate"),
		row("x", "y", "z"),
	}}
	table := NormalizeTable(entry)

	blob, err := json.Marshal(table)
	if err != nil {
		t.Fatal(err)
	}
	var back NormalizedTable
	if err := json.Unmarshal(blob, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, table) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", back, table)
	}
}

func TestNormalizeTableIdempotentOnDegenerateInput(t *testing.T) {
	// Re-running the normalizer over a single residual row of its own
	// output must not crash and must stay re-derivable.
	first := NormalizeTable(RawTableEntry{Rows: []RawRow{row("a", "b", "c")}})
	second := NormalizeTable(RawTableEntry{Rows: []RawRow{row(first.Rows[0]...)}})
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Fatalf("%v vs %v", first.Rows, second.Rows)
	}
}
