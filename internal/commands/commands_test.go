package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/statex-dev/statex/internal/categories"
	"github.com/statex-dev/statex/internal/commands"
	"github.com/statex-dev/statex/internal/config"
	"github.com/statex-dev/statex/internal/model"
	"github.com/statex-dev/statex/internal/report"
	"github.com/statex-dev/statex/internal/runlog"
)

const testNow = "2024-03-15T12:00:00Z"

func runStatex(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// workspace initializes a base dir with known mappings and a statement page.
func workspace(t *testing.T, known []model.Mapping, statement string) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runStatex(t, "", "init", dir)
	require.NoError(t, err)

	cfg := config.Default()
	require.NoError(t, categories.AppendDictionary(config.Resolve(dir, cfg.Paths.Dictionary), known))

	if statement != "" {
		data, err := os.ReadFile(filepath.Join("testdata", statement))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(config.Resolve(dir, cfg.Paths.Input), data, 0o644))
	}
	return dir
}

func readReport(t *testing.T, dir, ext string) [][]string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "output", "export_*."+ext))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	if ext == "csv" {
		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		var rows [][]string
		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			rows = append(rows, strings.Split(line, ","))
		}
		return rows
	}

	f, err := excelize.OpenFile(matches[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	require.NoError(t, err)
	return rows
}

func TestInit_CreatesLayout(t *testing.T) {
	dir := t.TempDir()
	out, err := runStatex(t, "", "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized statex workspace")

	for _, d := range []string{"input", "data", "output", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir())
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	mappings, err := categories.ReadDictionary(filepath.Join(dir, "data", "titles-dictionary.xlsx"))
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestInit_KeepsExistingDictionary(t *testing.T) {
	dir := workspace(t, []model.Mapping{{Title: "Пятёрочка", Category: "Продукты"}}, "")

	_, err := runStatex(t, "", "init", dir)
	require.NoError(t, err)

	mappings, err := categories.ReadDictionary(filepath.Join(dir, "data", "titles-dictionary.xlsx"))
	require.NoError(t, err)
	assert.Len(t, mappings, 1)
}

func TestRun_EndToEnd(t *testing.T) {
	dir := workspace(t, []model.Mapping{{Title: "Пятёрочка", Category: "Продукты"}}, "two_groups.html")

	started := time.Now().Add(-time.Second)
	out, err := runStatex(t, "Кафе\n", "run", "--dir", dir, "--now", testNow)
	require.NoError(t, err, out)
	assert.NotContains(t, out, "previous run")
	assert.Contains(t, out, `Category for "Шоколадница" does not exist`)
	assert.NotContains(t, out, `Category for "Пятёрочка"`)
	assert.Contains(t, out, "Results written to")

	rows := readReport(t, dir, "xlsx")
	require.Len(t, rows, 3)
	assert.Equal(t, report.Header, rows[0])
	assert.Equal(t, []string{"Продукты", "Пятёрочка", "1234.56", "14.03.2024", report.DefaultAccount}, rows[1])
	assert.Equal(t, []string{"Кафе", "Шоколадница", "450", "14.03.2024", report.DefaultAccount}, rows[2])

	mappings, err := categories.ReadDictionary(filepath.Join(dir, "data", "titles-dictionary.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, []model.Mapping{
		{Title: "Пятёрочка", Category: "Продукты"},
		{Title: "Шоколадница", Category: "Кафе"},
	}, mappings)

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Rows)
	assert.Equal(t, 1, entries[0].Dropped)
	assert.Equal(t, 1, entries[0].Learned)
	assert.True(t, entries[0].Timestamp.After(started), "report and log are stamped with the wall clock, not --now")
	assert.NotContains(t, filepath.Base(entries[0].Report), "2024-03-15")
}

func TestRun_SecondRunDoesNotPrompt(t *testing.T) {
	dir := workspace(t, []model.Mapping{{Title: "Пятёрочка", Category: "Продукты"}}, "two_groups.html")

	_, err := runStatex(t, "Кафе\n", "run", "--dir", dir, "--now", testNow, "--format", "csv")
	require.NoError(t, err)
	// Both runs may start within the same second and would share a report name.
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "output")))

	out, err := runStatex(t, "", "run", "--dir", dir, "--now", testNow, "--format", "csv")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "does not exist")
	assert.Contains(t, out, "previous run")

	rows := readReport(t, dir, "csv")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Кафе", "Шоколадница", "450.00", "14.03.2024", report.DefaultAccount}, rows[2])

	mappings, err := categories.ReadDictionary(filepath.Join(dir, "data", "titles-dictionary.xlsx"))
	require.NoError(t, err)
	assert.Len(t, mappings, 2)
}

func TestRun_ExplicitInputWithoutContainer(t *testing.T) {
	dir := workspace(t, nil, "")
	page := filepath.Join(t.TempDir(), "empty.html")
	require.NoError(t, os.WriteFile(page, []byte("<html><body><p>nothing</p></body></html>"), 0o644))

	out, err := runStatex(t, "", "run", page, "--dir", dir, "--now", testNow)
	require.NoError(t, err, out)
	assert.Contains(t, out, "container not found")

	rows := readReport(t, dir, "xlsx")
	require.Len(t, rows, 1)
	assert.Equal(t, report.Header, rows[0])
}

func TestRun_MissingDictionary(t *testing.T) {
	dir := workspace(t, nil, "two_groups.html")
	require.NoError(t, os.Remove(filepath.Join(dir, "data", "titles-dictionary.xlsx")))

	out, err := runStatex(t, "", "run", "--dir", dir, "--now", testNow)
	require.Error(t, err)
	assert.Contains(t, out, "opening dictionary")
}

func TestRun_MissingInput(t *testing.T) {
	dir := workspace(t, nil, "")
	_, err := runStatex(t, "", "run", "--dir", dir, "--now", testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening statement")
}

func TestRun_UnknownFormat(t *testing.T) {
	dir := workspace(t, nil, "two_groups.html")
	_, err := runStatex(t, "", "run", "--dir", dir, "--format", "ods")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown report format "ods"`)
}

func TestRun_BadNow(t *testing.T) {
	dir := workspace(t, nil, "two_groups.html")
	_, err := runStatex(t, "", "run", "--dir", dir, "--now", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing --now")
}

func TestRun_InvalidDateLabelKeepsLearned(t *testing.T) {
	dir := workspace(t, nil, "")
	page := `<div class="operationsstyles__Container-x">` +
		`<div><h3>Вчера</h3>` + rowHTML("Шоколадница", "1 ₽") + `</div>` +
		`<div><h3>5 мартобря</h3>` + rowHTML("Ригла", "2 ₽") + `</div></div>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input", "data.html"), []byte(page), 0o644))

	_, err := runStatex(t, "Кафе\n", "run", "--dir", dir, "--now", testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date label")

	matches, err := filepath.Glob(filepath.Join(dir, "output", "export_*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "no report on a failed pass")

	mappings, err := categories.ReadDictionary(filepath.Join(dir, "data", "titles-dictionary.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, []model.Mapping{{Title: "Шоколадница", Category: "Кафе"}}, mappings)
}

func TestRun_AutoCommitDictionary(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	_, err := runStatex(t, "", "init", dir, "--git")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join("testdata", "two_groups.html"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input", "data.html"), data, 0o644))

	out, err := runStatex(t, "Продукты\nКафе\n", "run", "--dir", dir, "--now", testNow)
	require.NoError(t, err, out)
	assert.Contains(t, out, "dictionary committed")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	msg, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "dictionary: learn 2 categories")
}

func rowHTML(title, amt string) string {
	return `<div class="operationstyles__Row-x">` +
		`<div class="operationstyles__InfoWrapper-x"><span class="operationstyles__Title-x">` + title + `</span></div>` +
		`<div class="operationstyles__AmountWrapper-x"><span class="operationstyles__OperationAmount-x">` + amt + `</span></div></div>`
}
