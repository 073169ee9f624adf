package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_DisplayOrder(t *testing.T) {
	cats := Categories()

	require.Len(t, cats, 5)
	wantLabels := []string{"Hardware", "AI Runtime", "AI Frameworks", "AI Servers", "Development Tools"}
	for i, c := range cats {
		assert.Equal(t, i+1, c.Order)
		assert.Equal(t, wantLabels[i], c.Label)
	}

	// Mutating the copy does not affect the registry
	cats[0].Label = "changed"
	assert.Equal(t, "Hardware", Categories()[0].Label)
}

func TestLookupAndParseCategory(t *testing.T) {
	info, ok := LookupCategory(CategoryAIServers)
	require.True(t, ok)
	assert.Equal(t, "AI Servers", info.Label)

	_, ok = LookupCategory("gpus")
	assert.False(t, ok)

	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"dev_tools", CategoryDevTools, true},
		{"Development Tools", CategoryDevTools, true},
		{" ai runtime ", CategoryAIRuntime, true},
		{"HARDWARE", CategoryHardware, true},
		{"nope", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "unknown", Category("unknown").Label())
}

func TestDefaultProbes_CoverEveryCategory(t *testing.T) {
	counts := map[Category]int{}
	for _, p := range DefaultProbes() {
		counts[p.Category]++
	}

	assert.Equal(t, 4, counts[CategoryHardware])
	assert.Equal(t, 4, counts[CategoryAIRuntime])
	assert.Equal(t, 4, counts[CategoryAIFrameworks])
	assert.Equal(t, 3, counts[CategoryAIServers])
	assert.Equal(t, 7, counts[CategoryDevTools])
}

func TestSummarize(t *testing.T) {
	snap := &Snapshot{Results: []Result{
		{ID: "git", Category: CategoryDevTools, Status: StatusOK},
		{ID: "cpu", Category: CategoryHardware, Status: StatusOK},
		{ID: "ram", Category: CategoryHardware, Status: StatusWarning},
		{ID: "conda", Category: CategoryDevTools, Status: StatusNotInstalled},
		{ID: "gcc", Category: CategoryDevTools, Status: StatusOK},
	}}

	got := Summarize(snap)

	require.Len(t, got, 2)
	assert.Equal(t, CategorySummary{Category: CategoryHardware, Label: "Hardware", Total: 2, OK: 1}, got[0])
	assert.Equal(t, CategorySummary{Category: CategoryDevTools, Label: "Development Tools", Total: 3, OK: 2}, got[1])
	assert.InDelta(t, 0.5, got[0].Ratio(), 1e-9)
	assert.InDelta(t, 2.0/3.0, got[1].Ratio(), 1e-9)

	assert.Nil(t, Summarize(nil))
	assert.Zero(t, CategorySummary{}.Ratio())
}

func TestGroupByCategory_PreservesOrder(t *testing.T) {
	groups := GroupByCategory([]Result{
		{ID: "git", Category: CategoryDevTools},
		{ID: "cpu", Category: CategoryHardware},
		{ID: "cmake", Category: CategoryDevTools},
	})

	require.Len(t, groups[CategoryDevTools], 2)
	assert.Equal(t, "git", groups[CategoryDevTools][0].ID)
	assert.Equal(t, "cmake", groups[CategoryDevTools][1].ID)
}

func TestFilterProbes(t *testing.T) {
	all := DefaultProbes()
	assert.Len(t, FilterProbes(all), len(all))

	servers := FilterProbes(all, CategoryAIServers)
	require.Len(t, servers, 3)
	assert.Equal(t, "ollama", servers[0].ID)
	assert.Equal(t, "docker", servers[2].ID)
}
