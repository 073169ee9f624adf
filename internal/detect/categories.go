package detect

// Category is a display grouping bucket for results.
type Category string

const (
	CategoryHardware     Category = "hardware"
	CategoryAIRuntime    Category = "ai_runtime"
	CategoryAIFrameworks Category = "ai_frameworks"
	CategoryAIServers    Category = "ai_servers"
	CategoryDevTools     Category = "dev_tools"
)

// CategoryInfo is the static label and display order of a category.
type CategoryInfo struct {
	Category Category `json:"id"`
	Label    string   `json:"label"`
	Order    int      `json:"order"`
}

var categories = []CategoryInfo{
	{Category: CategoryHardware, Label: "Hardware", Order: 1},
	{Category: CategoryAIRuntime, Label: "AI Runtime", Order: 2},
	{Category: CategoryAIFrameworks, Label: "AI Frameworks", Order: 3},
	{Category: CategoryAIServers, Label: "AI Servers", Order: 4},
	{Category: CategoryDevTools, Label: "Development Tools", Order: 5},
}

// Categories returns all categories in display order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory returns the metadata for c.
func LookupCategory(c Category) (CategoryInfo, bool) {
	for _, info := range categories {
		if info.Category == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// ParseCategory accepts either a category id or its label, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, info := range categories {
		if equalFold(s, string(info.Category)) || equalFold(s, info.Label) {
			return info.Category, true
		}
	}
	return "", false
}

// Label returns the display label, or the raw id for unknown categories.
func (c Category) Label() string {
	if info, ok := LookupCategory(c); ok {
		return info.Label
	}
	return string(c)
}

// CategorySummary counts results in one category.
type CategorySummary struct {
	Category Category `json:"id"`
	Label    string   `json:"label"`
	Total    int      `json:"total"`
	OK       int      `json:"ok"`
}

// Ratio is the fraction of results in the category with status ok.
func (s CategorySummary) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.OK) / float64(s.Total)
}

// Summarize groups a snapshot by category in display order.
// Categories with no results are omitted.
func Summarize(snap *Snapshot) []CategorySummary {
	if snap == nil {
		return nil
	}

	counts := make(map[Category]*CategorySummary)
	for _, r := range snap.Results {
		s, ok := counts[r.Category]
		if !ok {
			s = &CategorySummary{Category: r.Category, Label: r.Category.Label()}
			counts[r.Category] = s
		}
		s.Total++
		if r.Status == StatusOK {
			s.OK++
		}
	}

	out := make([]CategorySummary, 0, len(counts))
	for _, info := range categories {
		if s, ok := counts[info.Category]; ok {
			out = append(out, *s)
		}
	}
	return out
}

// GroupByCategory returns results bucketed by category, preserving
// registration order inside each bucket.
func GroupByCategory(results []Result) map[Category][]Result {
	groups := make(map[Category][]Result)
	for _, r := range results {
		groups[r.Category] = append(groups[r.Category], r)
	}
	return groups
}
