package ids

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratorPrefixesAndOrdering(t *testing.T) {
	g := NewGenerator()

	first := g.NewDepositID()
	second := g.NewDepositID()
	order := g.NewOrderID()

	require.True(t, strings.HasPrefix(first, "D"))
	require.True(t, strings.HasPrefix(order, "O"))
	require.Len(t, first, 27)
	require.Less(t, first, second)
}

func TestGeneratorUniqueUnderConcurrency(t *testing.T) {
	g := NewGenerator()

	const n = 500
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.NewOrderID()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
}
