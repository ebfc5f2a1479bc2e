package invoice

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SuffixPolicy decides how references issued within the same minute are told apart.
type SuffixPolicy string

const (
	// SuffixNone keeps the bare minute timestamp; same-minute references collide.
	SuffixNone SuffixPolicy = "none"
	// SuffixSequence appends -02, -03 ... to later references within a minute.
	SuffixSequence SuffixPolicy = "sequence"
	// SuffixRandom appends eight hex characters from a random UUID.
	SuffixRandom SuffixPolicy = "random"
)

const (
	referenceLayout = "0601021504"
	issueDateLayout = "02/01/2006"
	stayDateLayout  = "02-01-2006"
)

// ParseSuffixPolicy maps a configuration value to a SuffixPolicy.
func ParseSuffixPolicy(value string) (SuffixPolicy, error) {
	switch SuffixPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", SuffixNone:
		return SuffixNone, nil
	case SuffixSequence:
		return SuffixSequence, nil
	case SuffixRandom:
		return SuffixRandom, nil
	default:
		return "", fmt.Errorf("unknown reference suffix policy %q", value)
	}
}

// ReferenceGenerator issues time-based invoice references such as LMT-2602251430.
// It is safe for concurrent use.
type ReferenceGenerator struct {
	prefix string
	policy SuffixPolicy
	loc    *time.Location
	now    func() time.Time
	newID  func() uuid.UUID

	mu         sync.Mutex
	lastMinute string
	seq        int
}

// NewReferenceGenerator constructs a generator. A nil location means UTC.
func NewReferenceGenerator(prefix string, policy SuffixPolicy, loc *time.Location) *ReferenceGenerator {
	if loc == nil {
		loc = time.UTC
	}
	if policy == "" {
		policy = SuffixNone
	}
	return &ReferenceGenerator{
		prefix: strings.TrimSpace(prefix),
		policy: policy,
		loc:    loc,
		now:    time.Now,
		newID:  uuid.New,
	}
}

// WithClock overrides the time source.
func (g *ReferenceGenerator) WithClock(now func() time.Time) *ReferenceGenerator {
	g.now = now
	return g
}

// Next returns a reference and the issue instant it was derived from.
func (g *ReferenceGenerator) Next() (string, time.Time) {
	issued := g.now().In(g.loc)
	stamp := issued.Format(referenceLayout)
	ref := stamp
	if g.prefix != "" {
		ref = g.prefix + "-" + stamp
	}

	switch g.policy {
	case SuffixSequence:
		g.mu.Lock()
		if stamp != g.lastMinute {
			g.lastMinute = stamp
			g.seq = 0
		}
		g.seq++
		n := g.seq
		g.mu.Unlock()
		if n > 1 {
			ref = fmt.Sprintf("%s-%02d", ref, n)
		}
	case SuffixRandom:
		id := g.newID()
		ref = ref + "-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	}
	return ref, issued
}

// FormatIssueDate renders the human-readable issue date.
func FormatIssueDate(t time.Time) string {
	return t.Format(issueDateLayout)
}

// FormatStayDate renders a stay boundary date.
func FormatStayDate(t time.Time) string {
	return t.Format(stayDateLayout)
}
