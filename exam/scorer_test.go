package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mcq(id uint, correct ...string) Question {
	return Question{ID: id, Type: QuestionTypeMCQ, CorrectAnswers: correct}
}

func shortAnswer(id uint, correct string) Question {
	return Question{ID: id, Type: QuestionTypeShortAnswer, CorrectAnswers: []string{correct}}
}

func TestScoreSingleChoice(t *testing.T) {
	cfg := Config{MarksPerQuestion: 2, PassingMarks: 50}
	questions := []Question{mcq(1, "b"), mcq(2, "a")}
	answers := map[uint]Answer{1: {"b"}, 2: {"c"}}

	result := Score(cfg, questions, answers)
	assert.Equal(t, 2.0, result.RawScore)
	assert.Equal(t, 4.0, result.TotalMarks)
	assert.Equal(t, 50.0, result.Percentage)
	assert.True(t, result.Passed)
	assert.True(t, result.PerQuestion[0].IsCorrect)
	assert.False(t, result.PerQuestion[1].IsCorrect)
}

func TestScoreMultiSelectSetEquality(t *testing.T) {
	cfg := Config{MarksPerQuestion: 1}
	questions := []Question{mcq(1, "a", "b")}

	// Order does not matter.
	result := Score(cfg, questions, map[uint]Answer{1: {"b", "a"}})
	assert.True(t, result.PerQuestion[0].IsCorrect)

	// A subset is not partially credited.
	result = Score(cfg, questions, map[uint]Answer{1: {"a"}})
	assert.False(t, result.PerQuestion[0].IsCorrect)
	assert.Equal(t, 0.0, result.RawScore)

	// A superset is wrong too.
	result = Score(cfg, questions, map[uint]Answer{1: {"a", "b", "c"}})
	assert.False(t, result.PerQuestion[0].IsCorrect)

	// Repeating a correct option does not fake a full set.
	result = Score(cfg, questions, map[uint]Answer{1: {"a", "a"}})
	assert.False(t, result.PerQuestion[0].IsCorrect)
}

func TestScoreShortAnswerTrimAndFold(t *testing.T) {
	cfg := Config{MarksPerQuestion: 1}
	questions := []Question{shortAnswer(1, "Paris")}

	result := Score(cfg, questions, map[uint]Answer{1: {" paris "}})
	assert.True(t, result.PerQuestion[0].IsCorrect)

	result = Score(cfg, questions, map[uint]Answer{1: {"London"}})
	assert.False(t, result.PerQuestion[0].IsCorrect)
}

func TestScoreUnansweredNeverPenalized(t *testing.T) {
	cfg := Config{MarksPerQuestion: 4, HasNegativeMarking: true, NegativeMarkValue: 1}
	questions := []Question{mcq(1, "a"), mcq(2, "a"), mcq(3, "a")}

	// One correct, one unanswered, one blank-only answer.
	answers := map[uint]Answer{1: {"a"}, 3: {"  "}}
	result := Score(cfg, questions, answers)
	assert.Equal(t, 4.0, result.RawScore)
	assert.False(t, result.PerQuestion[1].Answered)
	assert.False(t, result.PerQuestion[2].Answered)
	assert.Equal(t, 0.0, result.PerQuestion[1].Awarded)
	assert.Equal(t, 0.0, result.PerQuestion[2].Awarded)
}

func TestScoreNegativeMarking(t *testing.T) {
	cfg := Config{MarksPerQuestion: 4, HasNegativeMarking: true, NegativeMarkValue: 1, PassingMarks: 40}
	questions := []Question{mcq(1, "a"), mcq(2, "a"), mcq(3, "a")}
	answers := map[uint]Answer{1: {"a"}, 2: {"b"}, 3: {"b"}}

	result := Score(cfg, questions, answers)
	assert.Equal(t, 2.0, result.RawScore) // 4 - 1 - 1
	assert.Equal(t, 12.0, result.TotalMarks)
	assert.False(t, result.Passed)
}

func TestScoreClampedAtZero(t *testing.T) {
	cfg := Config{MarksPerQuestion: 1, HasNegativeMarking: true, NegativeMarkValue: 2}
	questions := []Question{mcq(1, "a"), mcq(2, "a")}
	answers := map[uint]Answer{1: {"b"}, 2: {"b"}}

	result := Score(cfg, questions, answers)
	assert.Equal(t, 0.0, result.RawScore)
	assert.Equal(t, 0.0, result.Percentage)
}

func TestScoreEmptyTest(t *testing.T) {
	result := Score(Config{MarksPerQuestion: 1}, nil, nil)
	assert.Equal(t, 0.0, result.RawScore)
	assert.Equal(t, 0.0, result.Percentage)
	assert.Empty(t, result.PerQuestion)
}

func TestScoreIdempotent(t *testing.T) {
	cfg := Config{MarksPerQuestion: 3, HasNegativeMarking: true, NegativeMarkValue: 1, PassingMarks: 60}
	questions := []Question{
		mcq(1, "a"),
		mcq(2, "a", "c"),
		shortAnswer(3, "Oxygen"),
		mcq(4, "d"),
	}
	answers := map[uint]Answer{
		1: {"a"},
		2: {"c", "a"},
		3: {"oxygen"},
	}

	first := Score(cfg, questions, answers)
	second := Score(cfg, questions, answers)
	assert.Equal(t, first, second)
	assert.Equal(t, 9.0, first.RawScore)
	assert.True(t, first.Passed)
}
