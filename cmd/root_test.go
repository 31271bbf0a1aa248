package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandHasScrapeSubcommand(t *testing.T) {
	root := newRootCmd()

	sub, _, err := root.Find([]string{"scrape"})
	require.NoError(t, err)
	require.Equal(t, "scrape", sub.Name())
	require.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestScrapeCommandFlags(t *testing.T) {
	cmd := newScrapeCmd()

	for _, name := range []string{"base-url", "workers", "minutes", "headless"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}
