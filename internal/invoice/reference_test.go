package invoice_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lmt-facturation/internal/invoice"
)

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestReferenceSameMinuteCollides(t *testing.T) {
	base := time.Date(2026, 2, 25, 14, 30, 5, 0, time.UTC)
	gen := invoice.NewReferenceGenerator("LMT", invoice.SuffixNone, time.UTC).
		WithClock(fixedClock(base, base.Add(40*time.Second), base.Add(time.Minute)))

	first, issued := gen.Next()
	second, _ := gen.Next()
	third, _ := gen.Next()
	require.Equal(t, "LMT-2602251430", first)
	require.Equal(t, first, second)
	require.Equal(t, "LMT-2602251431", third)
	require.Equal(t, "25/02/2026", invoice.FormatIssueDate(issued))
}

func TestReferenceSequenceSuffix(t *testing.T) {
	base := time.Date(2026, 2, 25, 14, 30, 0, 0, time.UTC)
	gen := invoice.NewReferenceGenerator("LMT", invoice.SuffixSequence, time.UTC).
		WithClock(fixedClock(base, base.Add(10*time.Second), base.Add(20*time.Second), base.Add(time.Minute)))

	refs := make([]string, 4)
	for i := range refs {
		refs[i], _ = gen.Next()
	}
	require.Equal(t, []string{"LMT-2602251430", "LMT-2602251430-02", "LMT-2602251430-03", "LMT-2602251431"}, refs)
}

func TestReferenceRandomSuffix(t *testing.T) {
	base := time.Date(2026, 2, 25, 14, 30, 0, 0, time.UTC)
	gen := invoice.NewReferenceGenerator("LMT", invoice.SuffixRandom, time.UTC).WithClock(fixedClock(base))
	a, _ := gen.Next()
	b, _ := gen.Next()
	require.Regexp(t, regexp.MustCompile(`^LMT-2602251430-[0-9A-F]{8}$`), a)
	require.NotEqual(t, a, b)
}

func TestReferenceUsesLocation(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	base := time.Date(2026, 2, 25, 22, 15, 0, 0, time.UTC)
	gen := invoice.NewReferenceGenerator("LMT", invoice.SuffixNone, loc).WithClock(fixedClock(base))
	ref, issued := gen.Next()
	require.Equal(t, "LMT-2602260115", ref)
	require.Equal(t, "26/02/2026", invoice.FormatIssueDate(issued))
}

func TestParseSuffixPolicy(t *testing.T) {
	for in, want := range map[string]invoice.SuffixPolicy{
		"":         invoice.SuffixNone,
		"none":     invoice.SuffixNone,
		"Sequence": invoice.SuffixSequence,
		" random ": invoice.SuffixRandom,
	} {
		got, err := invoice.ParseSuffixPolicy(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := invoice.ParseSuffixPolicy("uuid")
	require.Error(t, err)
}
