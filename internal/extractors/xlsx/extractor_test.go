package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"name", "amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"rent", 1200}))

	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	_, err = f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "paid in march"))

	path := filepath.Join(t.TempDir(), "budget.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExtractor_ExtractText(t *testing.T) {
	out, err := New().ExtractText(context.Background(), writeWorkbook(t), 0)
	require.NoError(t, err)
	assert.Equal(t, "Sheet: Sheet1\nname\tamount\nrent\t1200\n\nSheet: Notes\npaid in march\n", out.Text)
}

func TestExtractor_StopsAtLimit(t *testing.T) {
	out, err := New().ExtractText(context.Background(), writeWorkbook(t), 5)
	require.NoError(t, err)
	assert.NotContains(t, out.Text, "Notes")
}

func TestExtractor_NotAWorkbook(t *testing.T) {
	_, err := New().ExtractText(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"), 0)
	assert.Error(t, err)
}
