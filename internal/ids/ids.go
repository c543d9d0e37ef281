package ids

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	DepositPrefix = "D"
	OrderPrefix   = "O"
)

// Generator issues time-ordered identifiers. Monotonic entropy keeps ids
// unique and sortable even within the same millisecond.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// New returns prefix followed by a ULID, e.g. D01J9Z3M6X8W2Q4B7N5C1V0K3T.
func (g *Generator) New(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
	return prefix + id.String()
}

func (g *Generator) NewDepositID() string {
	return g.New(DepositPrefix)
}

func (g *Generator) NewOrderID() string {
	return g.New(OrderPrefix)
}
