package mcp

import (
	"github.com/Aman-CERP/rigcheck/internal/detect"
)

// Tool names.
const (
	ToolDetectEnvironment = "detect_environment"
	ToolListCategories    = "list_categories"
)

// DetectEnvironmentInput defines the input schema for the detect_environment tool (no parameters).
type DetectEnvironmentInput struct{}

// ListCategoriesInput defines the input schema for the list_categories tool (no parameters).
type ListCategoriesInput struct{}

// ListCategoriesOutput defines the output schema for the list_categories tool.
type ListCategoriesOutput struct {
	Categories []CategoryOutput `json:"categories" jsonschema:"result categories in display order"`
}

// CategoryOutput describes one result category.
type CategoryOutput struct {
	ID     string `json:"id" jsonschema:"category identifier used in results"`
	Label  string `json:"label" jsonschema:"human-readable category name"`
	Order  int    `json:"order" jsonschema:"display position, starting at 1"`
	Probes int    `json:"probes" jsonschema:"number of checks in this category"`
}

// newCategoriesOutput builds the list_categories payload for the given probes.
func newCategoriesOutput(probes []detect.Probe) ListCategoriesOutput {
	counts := make(map[detect.Category]int)
	for _, p := range probes {
		counts[p.Category]++
	}

	cats := detect.Categories()
	out := ListCategoriesOutput{Categories: make([]CategoryOutput, 0, len(cats))}
	for _, c := range cats {
		out.Categories = append(out.Categories, CategoryOutput{
			ID:     string(c.Category),
			Label:  c.Label,
			Order:  c.Order,
			Probes: counts[c.Category],
		})
	}
	return out
}
