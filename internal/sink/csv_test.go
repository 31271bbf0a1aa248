package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpineda26/facultyscraper/internal/scraper"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWritesHeaderAndRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contacts.csv")
	w, err := NewCSV(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(&scraper.ContactRecord{
		Email:      "alice.reyes@campus.test",
		Name:       "Alice Reyes",
		Office:     "College of Computer Studies",
		Department: "Software Technology",
		ProfileURL: "https://campus.test/profiles/alice",
	}))
	require.NoError(t, w.Close())

	rows := readRows(t, path)
	require.Equal(t, [][]string{
		{"email", "name", "office", "department", "profile_url"},
		{
			"alice.reyes@campus.test",
			"Alice Reyes",
			"College of Computer Studies",
			"Software Technology",
			"https://campus.test/profiles/alice",
		},
	}, rows)
}

func TestCSVAppendsWithoutRepeatingHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contacts.csv")

	w, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(&scraper.ContactRecord{Email: "first@campus.test"}))
	require.NoError(t, w.Close())

	w, err = NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(&scraper.ContactRecord{Email: "second@campus.test"}))
	require.NoError(t, w.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	require.Equal(t, csvHeader, rows[0])
	require.Equal(t, "first@campus.test", rows[1][0])
	require.Equal(t, "second@campus.test", rows[2][0])
}

func TestCSVFlushesPerRow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contacts.csv")
	w, err := NewCSV(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Write(&scraper.ContactRecord{Email: "alice@campus.test"}))

	// the row is on disk before Close
	rows := readRows(t, path)
	require.Len(t, rows, 2)
	require.Equal(t, "alice@campus.test", rows[1][0])
}
