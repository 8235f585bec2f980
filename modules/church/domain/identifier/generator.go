package identifier

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/go-faster/errors"

	"github.com/gracewave/gracewave/pkg/metrics"
)

// ErrGenerationExhausted is returned when the attempt budget runs out
// without finding a free identifier.
var ErrGenerationExhausted = errors.New("identifier generation exhausted")

var idPattern = regexp.MustCompile(`^[A-Z]+-\d{4}-[A-Z0-9]{9}$`)

const (
	suffixLength = 9
	suffixChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ExistsFunc probes whether a candidate identifier is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// Generator produces church identifiers of the form PREFIX-YEAR-SUFFIX,
// where SUFFIX is nine random uppercase base36 characters. Candidates are
// probed for uniqueness up to maxAttempts times.
type Generator struct {
	prefix      string
	maxAttempts int
	exists      ExistsFunc
	now         func() time.Time
}

type GeneratorOption func(*Generator)

// WithClock overrides the year source, for tests.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

func NewGenerator(prefix string, maxAttempts int, exists ExistsFunc, opts ...GeneratorOption) *Generator {
	g := &Generator{
		prefix:      prefix,
		maxAttempts: maxAttempts,
		exists:      exists,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a fresh identifier not currently present per the exists
// probe. The probe cannot rule out a concurrent insert of the same
// candidate; the unique constraint on churches.id is the final arbiter.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate, err := g.newCandidate()
		if err != nil {
			return "", err
		}
		metrics.IdentifierAttempts.Inc()
		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(err, "failed to probe identifier")
		}
		if !taken {
			return candidate, nil
		}
		metrics.IdentifierCollisions.Inc()
	}
	return "", ErrGenerationExhausted
}

func (g *Generator) newCandidate() (string, error) {
	suffix := make([]byte, suffixLength)
	max := big.NewInt(int64(len(suffixChars)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "failed to read random bytes")
		}
		suffix[i] = suffixChars[n.Int64()]
	}
	return fmt.Sprintf("%s-%d-%s", g.prefix, g.now().Year(), string(suffix)), nil
}

// Valid reports whether id matches the identifier scheme.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}
