// Package exam builds randomized tests from a weighted category
// composition and scores submitted attempts. All functions are pure
// over their inputs; storage access happens through the PoolFunc the
// caller supplies.
package exam

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const (
	QuestionTypeMCQ         = "mcq"
	QuestionTypeShortAnswer = "short_answer"
)

const (
	UnderfillAllow = "allow"
	UnderfillFail  = "fail"
)

// Config carries the generation and marking parameters of a test.
type Config struct {
	TotalQuestions     int
	MarksPerQuestion   float64
	HasNegativeMarking bool
	NegativeMarkValue  float64
	PassingMarks       float64
	UnderfillPolicy    string // allow, fail
}

// CompositionRule assigns a percentage share of the test to a category
// and its descendants.
type CompositionRule struct {
	CategoryID uint
	Percentage float64
}

type Question struct {
	ID             uint
	Text           string
	Type           string // mcq, short_answer
	Options        []string
	CorrectAnswers []string
	CategoryID     uint
}

// PickedQuestion is a generated question with its 1-based presentation
// order in the final test.
type PickedQuestion struct {
	Question
	SequenceOrder int
}

// PoolFunc fetches the bank questions belonging to any of the given
// categories.
type PoolFunc func(categoryIDs []uint) ([]Question, error)

// ErrPoolTooSmall is returned under the "fail" underfill policy when a
// category cannot supply its share of questions.
var ErrPoolTooSmall = errors.New("question pool smaller than requested")

// Distribute apportions total across the rules with the
// largest-remainder method: each rule gets the floor of its exact
// share, then the leftover units go to the largest fractional
// remainders, ties broken by rule position. The results sum to total
// whenever the percentages do not exceed 100 in aggregate.
func Distribute(rules []CompositionRule, total int) []int {
	counts := make([]int, len(rules))
	remainders := make([]struct {
		idx int
		rem float64
	}, len(rules))

	assigned := 0
	for i, r := range rules {
		exact := r.Percentage / 100 * float64(total)
		floor := int(math.Floor(exact))
		counts[i] = floor
		assigned += floor
		remainders[i].idx = i
		remainders[i].rem = exact - float64(floor)
	}

	deficit := total - assigned
	if deficit <= 0 {
		return counts
	}
	sort.SliceStable(remainders, func(a, b int) bool {
		return remainders[a].rem > remainders[b].rem
	})
	for i := 0; i < deficit && i < len(remainders); i++ {
		counts[remainders[i].idx]++
	}
	return counts
}

// Generate builds the ordered question list for one test session: it
// distributes the question count across the composition, samples each
// category pool without replacement, shuffles the combined set so
// category blocks are not visibly grouped, and assigns presentation
// order. The caller must have verified the config is published.
func Generate(cfg Config, rules []CompositionRule, index *CategoryIndex, pool PoolFunc, rng *rand.Rand) ([]PickedQuestion, error) {
	counts := Distribute(rules, cfg.TotalQuestions)

	picked := make([]Question, 0, cfg.TotalQuestions)
	for i, rule := range rules {
		want := counts[i]
		if want == 0 {
			continue
		}
		questions, err := pool(index.Descendants(rule.CategoryID))
		if err != nil {
			return nil, err
		}
		if len(questions) < want {
			if cfg.UnderfillPolicy == UnderfillFail {
				return nil, fmt.Errorf("%w: category %d has %d of %d questions",
					ErrPoolTooSmall, rule.CategoryID, len(questions), want)
			}
			want = len(questions)
		}
		shuffle(questions, rng)
		picked = append(picked, questions[:want]...)
	}

	shuffle(picked, rng)
	ordered := make([]PickedQuestion, len(picked))
	for i, q := range picked {
		ordered[i] = PickedQuestion{Question: q, SequenceOrder: i + 1}
	}
	return ordered, nil
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle[T any](s []T, rng *rand.Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
