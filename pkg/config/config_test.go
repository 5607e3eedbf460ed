package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/catmigrate/pkg/category"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps Load from picking up config files outside the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "*.ts", cfg.FileGlob)
	assert.Equal(t, "../../../constants/item-constants", cfg.ImportPath)
	assert.Equal(t, "CATEGORY", cfg.Namespace)
	require.Len(t, cfg.Groups, 3)
	assert.Equal(t, "consumable", cfg.Groups[0].Kind)
	assert.False(t, cfg.Groups[0].Ambiguous())
	assert.True(t, cfg.Groups[2].Ambiguous())
	assert.Equal(t, []category.Kind{category.Consumable, category.Resource}, cfg.Groups[2].ClassifyKinds())

	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, "CATEGORY.EQUIPMENT", table.Symbol(category.Equipment))
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, ".catmigrate.yaml", `
root: be/data/items/definitions
exclude:
  - "resources/Legacy*.ts"
`)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "be/data/items/definitions", cfg.Root)
	assert.Equal(t, []string{"resources/Legacy*.ts"}, cfg.Exclude)
	assert.Len(t, cfg.Groups, 3, "groups keep their defaults")
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "custom.yaml", "root: from-file\nnamespace: FROM_FILE\nfile_glob: \"*.tsx\"\n")
	t.Setenv("CATMIGRATE_NAMESPACE", "FROM_ENV")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("root", ".", "")
	fs.String("file-glob", "*.ts", "")
	require.NoError(t, fs.Parse([]string{"--root", "from-flag"}))

	cfg, err := Load(LoadOptions{ConfigFile: path, Flags: fs})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Root, "changed flag wins")
	assert.Equal(t, "FROM_ENV", cfg.Namespace, "env beats file")
	assert.Equal(t, "*.tsx", cfg.FileGlob, "file beats unchanged flag default")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown group kind",
			content: `
groups:
  - name: quests
    dir: quests
    kind: quest
`,
		},
		{
			name: "group with kind and classify",
			content: `
groups:
  - name: resources
    dir: resources
    kind: resource
    classify: [consumable]
`,
		},
		{name: "bad namespace", content: "namespace: \"not-an-identifier\"\n"},
		{name: "bad tag", content: "kinds:\n  - tag: Consumable\n"},
		{name: "unknown key", content: "rooot: typo\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := writeConfig(t, dir, "bad.yaml", tt.content)

			_, err := Load(LoadOptions{ConfigFile: path})
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(LoadOptions{ConfigFile: filepath.Join(dir, "nope.yaml")})
	assert.Error(t, err)
}

func TestValidate_DuplicateGroup(t *testing.T) {
	cfg := Default()
	cfg.Groups = append(cfg.Groups, cfg.Groups[0])

	assert.ErrorContains(t, cfg.Validate(), "duplicate group")
}

func TestValidateConfig_Raw(t *testing.T) {
	assert.Error(t, ValidateConfig([]byte(`{"root": "."}`)))
}
