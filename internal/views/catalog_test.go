package views

import (
	"testing"

	"github.com/verte-zerg/oradash/internal/model"
)

func TestCatalogShape(t *testing.T) {
	if Len() != 10 {
		t.Fatalf("expected 10 views, got %d", Len())
	}
	if err := Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	all := Catalog()
	tables := 0
	for _, def := range all {
		if def.Kind == model.KindTable {
			tables++
		}
	}
	if tables != 2 || all[8].Kind != model.KindTable || all[9].Kind != model.KindTable {
		t.Fatalf("expected tables at 8 and 9")
	}
	if all[0].Filter != model.FilterRecent || all[0].Dimension != model.DimensionDate || all[0].Chart != model.ChartLine {
		t.Fatalf("unexpected first view: %+v", all[0])
	}
	if all[7].Filter != model.FilterAll || all[7].Dimension != model.DimensionErrorCode {
		t.Fatalf("unexpected view 7: %+v", all[7])
	}
}

func TestCatalogIsCopied(t *testing.T) {
	all := Catalog()
	all[0].Title = "changed"
	def, err := Get(0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if def.Title == "changed" {
		t.Fatalf("catalog was mutated through copy")
	}
	if _, err := Get(10); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestHeading(t *testing.T) {
	chartDef, _ := Get(2)
	if got := Heading(chartDef, 10); got != "3. Yearly History (Line)" {
		t.Fatalf("unexpected chart heading %q", got)
	}
	tableDef, _ := Get(8)
	if got := Heading(tableDef, 5); got != "9. Top 5 Recent Errors" {
		t.Fatalf("unexpected table heading %q", got)
	}
}
