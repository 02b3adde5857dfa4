// Package paths derives navigation paths and category transitions from
// reconstructed sessions.
package paths

import (
	"sort"
	"strings"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// StepSeparator joins the slugs of a path key.
const StepSeparator = " → "

// Result holds the ranked paths and transitions mined from a set of sessions.
type Result struct {
	Paths       []domain.Path
	Transitions []domain.TransitionEdge
	// QualifyingSessions is the number of sessions long enough to contribute.
	QualifyingSessions int
}

type pathAccumulator struct {
	steps         []string
	occurrences   int
	totalDuration int
	completed     int
}

type edgeKey struct {
	from string
	to   string
}

// Mine computes the top paths and category transitions over sessions of at
// least params.MinPathLength events. It has no side effects and its output
// depends only on its arguments.
func Mine(sessions []domain.Session, params *Params) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	acc := make(map[string]*pathAccumulator)
	edges := make(map[edgeKey]int)
	qualifying := 0

	for _, s := range sessions {
		if s.Len() < params.MinPathLength {
			continue
		}
		qualifying++

		steps := prefix(s, params.PathDepth)
		key := strings.Join(steps, StepSeparator)

		a, ok := acc[key]
		if !ok {
			a = &pathAccumulator{steps: steps}
			acc[key] = a
		}
		a.occurrences++
		a.totalDuration += s.TotalDurationSeconds()
		if s.Events[len(s.Events)-1].Duration() > params.CompletionThresholdSeconds {
			a.completed++
		}

		for i := 1; i < len(s.Events); i++ {
			from, to := s.Events[i-1].Category, s.Events[i].Category
			if from != to {
				edges[edgeKey{from: from, to: to}]++
			}
		}
	}

	return Result{
		Paths:              rankPaths(acc, params.TopPaths),
		Transitions:        rankTransitions(edges, params.TopTransitions),
		QualifyingSessions: qualifying,
	}, nil
}

func prefix(s domain.Session, depth int) []string {
	n := depth
	if len(s.Events) < n {
		n = len(s.Events)
	}
	steps := make([]string, n)
	for i := 0; i < n; i++ {
		steps[i] = s.Events[i].ContentSlug
	}
	return steps
}

func rankPaths(acc map[string]*pathAccumulator, limit int) []domain.Path {
	out := make([]domain.Path, 0, len(acc))
	for key, a := range acc {
		out = append(out, domain.Path{
			Key:                         key,
			Steps:                       a.steps,
			OccurrenceCount:             a.occurrences,
			AverageTotalDurationSeconds: float64(a.totalDuration) / float64(a.occurrences),
			CompletionRate:              float64(a.completed) / float64(a.occurrences),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurrenceCount != out[j].OccurrenceCount {
			return out[i].OccurrenceCount > out[j].OccurrenceCount
		}
		return out[i].Key < out[j].Key
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func rankTransitions(edges map[edgeKey]int, limit int) []domain.TransitionEdge {
	out := make([]domain.TransitionEdge, 0, len(edges))
	for k, count := range edges {
		out = append(out, domain.TransitionEdge{FromCategory: k.from, ToCategory: k.to, Count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].FromCategory != out[j].FromCategory {
			return out[i].FromCategory < out[j].FromCategory
		}
		return out[i].ToCategory < out[j].ToCategory
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
