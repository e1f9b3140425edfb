package exam

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistributeExactShares(t *testing.T) {
	rules := []CompositionRule{
		{CategoryID: 1, Percentage: 60},
		{CategoryID: 2, Percentage: 40},
	}
	assert.Equal(t, []int{3, 2}, Distribute(rules, 5))
}

func TestDistributeLargestRemainder(t *testing.T) {
	// Floors are 3,3,3 (deficit 1); C has the largest fraction (.4)
	// and receives the extra unit.
	rules := []CompositionRule{
		{CategoryID: 1, Percentage: 33},
		{CategoryID: 2, Percentage: 33},
		{CategoryID: 3, Percentage: 34},
	}
	assert.Equal(t, []int{3, 3, 4}, Distribute(rules, 10))
}

func TestDistributeTiesByRulePosition(t *testing.T) {
	rules := []CompositionRule{
		{CategoryID: 1, Percentage: 50},
		{CategoryID: 2, Percentage: 50},
	}
	// 2.5 + 2.5 with deficit 1: the earlier rule wins the tie.
	assert.Equal(t, []int{3, 2}, Distribute(rules, 5))
}

func TestDistributeSumsToTotal(t *testing.T) {
	compositions := [][]CompositionRule{
		{{1, 20}, {2, 30}, {3, 50}},
		{{1, 33}, {2, 33}, {3, 34}},
		{{1, 17}, {2, 23}, {3, 29}, {4, 31}},
		{{1, 100}},
		{{1, 1}, {2, 99}},
	}
	for _, rules := range compositions {
		for total := len(rules); total <= 60; total++ {
			counts := Distribute(rules, total)
			sum := 0
			for _, c := range counts {
				sum += c
			}
			assert.Equal(t, total, sum, "composition %v total %d", rules, total)
		}
	}
}

func bank(categoryID uint, n int) []Question {
	questions := make([]Question, n)
	for i := range questions {
		questions[i] = Question{
			ID:         categoryID*1000 + uint(i),
			Type:       QuestionTypeMCQ,
			CategoryID: categoryID,
		}
	}
	return questions
}

func poolFrom(banks map[uint][]Question) PoolFunc {
	return func(categoryIDs []uint) ([]Question, error) {
		var out []Question
		for _, id := range categoryIDs {
			out = append(out, banks[id]...)
		}
		return out, nil
	}
}

func TestGenerateCountsAndOrder(t *testing.T) {
	cfg := Config{TotalQuestions: 10, UnderfillPolicy: UnderfillAllow}
	rules := []CompositionRule{
		{CategoryID: 1, Percentage: 60},
		{CategoryID: 2, Percentage: 40},
	}
	index := NewCategoryIndex([]CategoryNode{{ID: 1}, {ID: 2}})
	pool := poolFrom(map[uint][]Question{1: bank(1, 20), 2: bank(2, 20)})

	picked, err := Generate(cfg, rules, index, pool, rand.New(rand.NewSource(42)))
	assert.NoError(t, err)
	assert.Len(t, picked, 10)

	perCategory := map[uint]int{}
	seen := map[uint]bool{}
	for i, p := range picked {
		assert.Equal(t, i+1, p.SequenceOrder)
		assert.False(t, seen[p.ID], "question %d drawn twice", p.ID)
		seen[p.ID] = true
		perCategory[p.CategoryID]++
	}
	assert.Equal(t, 6, perCategory[1])
	assert.Equal(t, 4, perCategory[2])
}

func TestGenerateIncludesDescendantCategories(t *testing.T) {
	// Category 1 has child 2 which has child 3; a rule on 1 draws from
	// all three.
	parent := func(id uint) *uint { return &id }
	index := NewCategoryIndex([]CategoryNode{
		{ID: 1},
		{ID: 2, ParentID: parent(1)},
		{ID: 3, ParentID: parent(2)},
	})
	assert.ElementsMatch(t, []uint{1, 2, 3}, index.Descendants(1))

	cfg := Config{TotalQuestions: 6, UnderfillPolicy: UnderfillAllow}
	rules := []CompositionRule{{CategoryID: 1, Percentage: 100}}
	pool := poolFrom(map[uint][]Question{2: bank(2, 3), 3: bank(3, 3)})

	picked, err := Generate(cfg, rules, index, pool, rand.New(rand.NewSource(7)))
	assert.NoError(t, err)
	assert.Len(t, picked, 6)
}

func TestGenerateUnderfillAllow(t *testing.T) {
	cfg := Config{TotalQuestions: 10, UnderfillPolicy: UnderfillAllow}
	rules := []CompositionRule{{CategoryID: 1, Percentage: 100}}
	index := NewCategoryIndex([]CategoryNode{{ID: 1}})
	pool := poolFrom(map[uint][]Question{1: bank(1, 4)})

	picked, err := Generate(cfg, rules, index, pool, rand.New(rand.NewSource(1)))
	assert.NoError(t, err)
	assert.Len(t, picked, 4)
}

func TestGenerateUnderfillFail(t *testing.T) {
	cfg := Config{TotalQuestions: 10, UnderfillPolicy: UnderfillFail}
	rules := []CompositionRule{{CategoryID: 1, Percentage: 100}}
	index := NewCategoryIndex([]CategoryNode{{ID: 1}})
	pool := poolFrom(map[uint][]Question{1: bank(1, 4)})

	_, err := Generate(cfg, rules, index, pool, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrPoolTooSmall)
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	cfg := Config{TotalQuestions: 8, UnderfillPolicy: UnderfillAllow}
	rules := []CompositionRule{
		{CategoryID: 1, Percentage: 50},
		{CategoryID: 2, Percentage: 50},
	}
	index := NewCategoryIndex([]CategoryNode{{ID: 1}, {ID: 2}})
	pool := poolFrom(map[uint][]Question{1: bank(1, 10), 2: bank(2, 10)})

	first, err := Generate(cfg, rules, index, pool, rand.New(rand.NewSource(99)))
	assert.NoError(t, err)
	second, err := Generate(cfg, rules, index, pool, rand.New(rand.NewSource(99)))
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateSkipsZeroPercentRules(t *testing.T) {
	calls := 0
	pool := func(categoryIDs []uint) ([]Question, error) {
		calls++
		return bank(categoryIDs[0], 10), nil
	}
	cfg := Config{TotalQuestions: 5, UnderfillPolicy: UnderfillAllow}
	rules := []CompositionRule{
		{CategoryID: 1, Percentage: 100},
		{CategoryID: 2, Percentage: 0},
	}
	index := NewCategoryIndex([]CategoryNode{{ID: 1}, {ID: 2}})

	picked, err := Generate(cfg, rules, index, pool, rand.New(rand.NewSource(3)))
	assert.NoError(t, err)
	assert.Len(t, picked, 5)
	assert.Equal(t, 1, calls)
}
