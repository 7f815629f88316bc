// Package views defines the fixed, ordered catalog of dashboard views.
package views

import (
	"fmt"

	"github.com/verte-zerg/oradash/internal/model"
	"github.com/verte-zerg/oradash/internal/stats"
)

// RecentWindowDays is the length of the "recent" window, counted back from the load day.
const RecentWindowDays = 30

// The catalog order is the rotation order.
var catalog = []model.ViewDefinition{
	chart(0, model.FilterRecent, model.DimensionDate, model.ChartLine, "Last 30 Days (Line)"),
	chart(1, model.FilterRecent, model.DimensionDate, model.ChartBar, "Last 30 Days (Bars)"),
	chart(2, model.FilterAll, model.DimensionYear, model.ChartLine, "Yearly History (Line)"),
	chart(3, model.FilterAll, model.DimensionMonth, model.ChartLine, "Monthly History (Line)"),
	chart(4, model.FilterAll, model.DimensionYear, model.ChartBar, "Yearly History (Bars)"),
	chart(5, model.FilterAll, model.DimensionMonth, model.ChartBar, "Monthly History (Bars)"),
	chart(6, model.FilterRecent, model.DimensionErrorCode, model.ChartBar, "Recent Errors (Top)"),
	chart(7, model.FilterAll, model.DimensionErrorCode, model.ChartBar, "Historical Errors (Top)"),
	{ID: 8, Kind: model.KindTable, Filter: model.FilterRecent, Title: "Top %d Recent Errors"},
	{ID: 9, Kind: model.KindTable, Filter: model.FilterAll, Title: "Top %d Historical Errors"},
}

func chart(id int, filter model.FilterKind, dim model.Dimension, kind model.ChartKind, title string) model.ViewDefinition {
	return model.ViewDefinition{
		ID:        id,
		Kind:      model.KindChart,
		Filter:    filter,
		Dimension: dim,
		Chart:     kind,
		Title:     title,
	}
}

// Len returns the number of views in the catalog.
func Len() int {
	return len(catalog)
}

// Catalog returns a copy of all view definitions in rotation order.
func Catalog() []model.ViewDefinition {
	return append([]model.ViewDefinition(nil), catalog...)
}

// Get returns the view at index i.
func Get(i int) (model.ViewDefinition, error) {
	if i < 0 || i >= len(catalog) {
		return model.ViewDefinition{}, fmt.Errorf("view index %d out of range [0,%d)", i, len(catalog))
	}
	return catalog[i], nil
}

// Heading returns the numbered display title of def; table titles include topK.
func Heading(def model.ViewDefinition, topK int) string {
	title := def.Title
	if def.Kind == model.KindTable {
		title = fmt.Sprintf(def.Title, topK)
	}
	return fmt.Sprintf("%d. %s", def.ID+1, title)
}

// Validate checks that the catalog is well formed.
func Validate() error {
	for i, def := range catalog {
		if def.ID != i {
			return fmt.Errorf("view %d has id %d", i, def.ID)
		}
		if def.Kind == model.KindChart && !stats.KnownDimension(def.Dimension) {
			return fmt.Errorf("view %d: %w", i, &stats.UnrecognizedDimensionError{Dimension: def.Dimension})
		}
	}
	return nil
}
