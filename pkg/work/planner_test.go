package work

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/catmigrate/pkg/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultGroups() []GroupSpec {
	return []GroupSpec{
		{Name: "consumables", Dir: "consumables", Kind: category.Consumable},
		{Name: "equipment", Dir: "equipment", Kind: category.Equipment},
		{Name: "resources", Dir: "resources", Classify: []category.Kind{category.Consumable, category.Resource}},
	}
}

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		path := filepath.Join(root, r)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("export {}\n"), 0o644))
	}
}

func TestGenerateManifest(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"consumables/ManaPotion.ts",
		"consumables/HealthPotion.ts",
		"consumables/README.md",
		"consumables/nested/Deep.ts",
		"equipment/BronzeBoots.ts",
		"resources/Amber.ts",
	)

	m, err := NewPlanner(PlannerConfig{Command: "migrate", Root: root, Groups: defaultGroups()}).GenerateManifest()
	require.NoError(t, err)

	var paths []string
	for _, it := range m.WorkItems {
		rel, err := filepath.Rel(root, it.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{
		"consumables/HealthPotion.ts",
		"consumables/ManaPotion.ts",
		"equipment/BronzeBoots.ts",
		"resources/Amber.ts",
	}, paths)

	assert.Equal(t, 4, m.Plan.TotalFiles)
	assert.Equal(t, "*.ts", m.Plan.FileGlob)
	require.Len(t, m.Groups, 3)
	assert.Equal(t, []string{"consumables_0", "consumables_1"}, m.Groups[0].WorkItemIDs)

	amber := m.WorkItems[3]
	assert.Equal(t, "resources", amber.Group)
	assert.Empty(t, amber.Kind)
	assert.Equal(t, []category.Kind{category.Consumable, category.Resource}, amber.Classify)
	assert.Equal(t, category.Equipment, m.WorkItems[2].Kind)
	assert.Equal(t, int64(len("export {}\n")), amber.Size)
}

func TestGenerateManifest_MaxDepth(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "equipment/Sword.ts", "equipment/weapons/Axe.ts", "equipment/weapons/old/Club.ts")

	groups := []GroupSpec{{Name: "equipment", Dir: "equipment", Kind: category.Equipment}}
	m, err := NewPlanner(PlannerConfig{Root: root, Groups: groups, MaxDepth: 1}).GenerateManifest()
	require.NoError(t, err)

	assert.Len(t, m.WorkItems, 2)
}

func TestGenerateManifest_MissingGroup(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "equipment/Sword.ts")

	m, err := NewPlanner(PlannerConfig{Root: root, Groups: defaultGroups()}).GenerateManifest()
	require.NoError(t, err)

	assert.True(t, m.Groups[0].Missing)
	assert.False(t, m.Groups[1].Missing)
	assert.True(t, m.Groups[2].Missing)
	assert.Len(t, m.WorkItems, 1)
}

func TestGenerateManifest_Ignore(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "resources/Amber.ts", "resources/LegacyOre.ts", "resources/Birch.ts")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".catmigrateignore"), []byte("resources/Legacy*.ts\n"), 0o644))

	groups := []GroupSpec{{Name: "resources", Dir: "resources", Classify: []category.Kind{category.Resource}}}

	m, err := NewPlanner(PlannerConfig{Root: root, Groups: groups, ExcludePatterns: []string{"Birch.ts"}}).GenerateManifest()
	require.NoError(t, err)
	assert.Len(t, m.WorkItems, 1)
	assert.Equal(t, 2, m.Plan.IgnoredFiles)

	m, err = NewPlanner(PlannerConfig{Root: root, Groups: groups, NoIgnore: true}).GenerateManifest()
	require.NoError(t, err)
	assert.Len(t, m.WorkItems, 3)
}

func TestGenerateManifest_Glob(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "equipment/Sword.ts", "equipment/Sword.test.ts", "equipment/Shield.tsx")

	groups := []GroupSpec{{Name: "equipment", Dir: "equipment", Kind: category.Equipment}}

	m, err := NewPlanner(PlannerConfig{Root: root, Groups: groups, FileGlob: "*.{ts,tsx}"}).GenerateManifest()
	require.NoError(t, err)
	assert.Len(t, m.WorkItems, 3)

	_, err = NewPlanner(PlannerConfig{Root: root, Groups: groups, FileGlob: "[*.ts"}).GenerateManifest()
	assert.Error(t, err)
}

func TestGenerateManifest_GroupIsFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "equipment")

	groups := []GroupSpec{{Name: "equipment", Dir: "equipment", Kind: category.Equipment}}
	_, err := NewPlanner(PlannerConfig{Root: root, Groups: groups}).GenerateManifest()
	assert.Error(t, err)
}

func TestGroupSpecAmbiguous(t *testing.T) {
	groups := defaultGroups()
	assert.False(t, groups[0].Ambiguous())
	assert.True(t, groups[2].Ambiguous())
}
