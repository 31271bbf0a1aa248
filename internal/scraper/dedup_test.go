package scraper

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeduplicatorClaimsPairOnce(t *testing.T) {
	t.Parallel()

	d := NewDeduplicator()
	require.True(t, d.TryClaim("https://example.edu/faculty", "Software Technology"))
	require.False(t, d.TryClaim("https://example.edu/faculty", "Software Technology"))
}

func TestDeduplicatorAllowsSameURLForOtherProgram(t *testing.T) {
	t.Parallel()

	d := NewDeduplicator()
	require.True(t, d.TryClaim("https://example.edu/faculty", "Software Technology"))
	require.True(t, d.TryClaim("https://example.edu/faculty", "Information Technology"))
	require.False(t, d.TryClaim("https://example.edu/faculty", "Information Technology"))
}

func TestDeduplicatorResetForgetsClaims(t *testing.T) {
	t.Parallel()

	d := NewDeduplicator()
	require.True(t, d.TryClaim("https://example.edu/p/1", "Management"))
	require.False(t, d.TryClaim("https://example.edu/p/1", "Management"))

	d.Reset()
	require.True(t, d.TryClaim("https://example.edu/p/1", "Management"))
}

func TestDeduplicatorConcurrentClaims(t *testing.T) {
	t.Parallel()

	const goroutines = 32
	d := NewDeduplicator()

	var wg sync.WaitGroup
	wins := make(chan string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			program := fmt.Sprintf("program-%d", n%4)
			if d.TryClaim("https://example.edu/shared", program) {
				wins <- program
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	seen := map[string]int{}
	for program := range wins {
		seen[program]++
	}
	require.Len(t, seen, 4)
	for program, count := range seen {
		require.Equal(t, 1, count, "program %s claimed more than once", program)
	}
}
