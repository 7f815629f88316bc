package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	cols := []column{
		{Header: "Code"},
		{Header: "Description"},
		{Header: "Total", RightAlign: true},
	}
	rows := [][]string{
		{"ORA-00942", "table missing", "12"},
		{"TNS-12541", "no listener", "3"},
	}

	lines := formatTable(cols, rows)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Code      Description   Total" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "ORA-00942 table missing    12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "TNS-12541 no listener       3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableTruncatesAndTrims(t *testing.T) {
	cols := []column{
		{Header: "Code"},
		{Header: "Message", MaxWidth: 10},
	}
	lines := formatTable(cols, [][]string{{"ORA-00942", "table or view does not exist"}, {"ORA-1"}})
	if lines[1] != "ORA-00942 table o..." {
		t.Fatalf("unexpected truncated row: %q", lines[1])
	}
	if lines[2] != "ORA-1" {
		t.Fatalf("expected trailing padding trimmed: %q", lines[2])
	}
}

func TestDisplayWidthCountsWideRunes(t *testing.T) {
	if got := displayWidth("表"); got != 2 {
		t.Fatalf("expected width 2, got %d", got)
	}
	if got := truncate("table or view does not exist", 10); displayWidth(got) > 10 {
		t.Fatalf("truncate exceeded width: %q", got)
	}
}
