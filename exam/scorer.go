package exam

import "strings"

// Answer is the user's response to one question: selected options for
// mcq, a single typed value for short answers. Empty means unanswered.
type Answer []string

type QuestionResult struct {
	QuestionID uint
	Answered   bool
	IsCorrect  bool
	Awarded    float64
}

type ScoreResult struct {
	RawScore    float64
	TotalMarks  float64
	Percentage  float64
	Passed      bool
	PerQuestion []QuestionResult
}

// Score marks a completed attempt. Correct answers earn
// MarksPerQuestion; wrong answers lose NegativeMarkValue when negative
// marking is on; unanswered questions never change the score. The raw
// score is clamped at zero. The computation is deterministic, so the
// preview a client computes and the authoritative server result agree.
func Score(cfg Config, questions []Question, answers map[uint]Answer) ScoreResult {
	raw := 0.0
	perQuestion := make([]QuestionResult, 0, len(questions))

	for _, q := range questions {
		result := QuestionResult{QuestionID: q.ID}
		answer := normalize(answers[q.ID])
		if len(answer) == 0 {
			perQuestion = append(perQuestion, result)
			continue
		}

		result.Answered = true
		if isCorrect(q, answer) {
			result.IsCorrect = true
			result.Awarded = cfg.MarksPerQuestion
		} else if cfg.HasNegativeMarking {
			result.Awarded = -cfg.NegativeMarkValue
		}
		raw += result.Awarded
		perQuestion = append(perQuestion, result)
	}

	if raw < 0 {
		raw = 0
	}
	totalMarks := float64(len(questions)) * cfg.MarksPerQuestion
	percentage := 0.0
	if totalMarks > 0 {
		percentage = raw / totalMarks * 100
	}

	return ScoreResult{
		RawScore:    raw,
		TotalMarks:  totalMarks,
		Percentage:  percentage,
		Passed:      percentage >= cfg.PassingMarks,
		PerQuestion: perQuestion,
	}
}

// normalize trims entries and drops blanks, so a whitespace-only
// submission counts as unanswered.
func normalize(answer Answer) Answer {
	out := make(Answer, 0, len(answer))
	for _, a := range answer {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func isCorrect(q Question, answer Answer) bool {
	if q.Type == QuestionTypeShortAnswer {
		if len(answer) != 1 {
			return false
		}
		for _, correct := range q.CorrectAnswers {
			if strings.EqualFold(strings.TrimSpace(correct), answer[0]) {
				return true
			}
		}
		return false
	}

	// mcq: the selected set must equal the correct set. Order does not
	// matter and partial credit is not supported.
	correct := make(map[string]bool, len(q.CorrectAnswers))
	for _, c := range q.CorrectAnswers {
		correct[strings.TrimSpace(c)] = true
	}
	selected := make(map[string]bool, len(answer))
	for _, a := range answer {
		selected[a] = true
	}
	if len(selected) != len(correct) {
		return false
	}
	for a := range selected {
		if !correct[a] {
			return false
		}
	}
	return true
}
