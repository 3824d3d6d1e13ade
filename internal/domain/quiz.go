package domain

import (
	"fmt"
	"strings"
)

// QuizPhase is the state of a quiz attempt.
type QuizPhase string

const (
	PhaseAwaitingAnswer QuizPhase = "awaiting_answer"
	PhaseRevealed       QuizPhase = "revealed"
	PhaseCompleted      QuizPhase = "completed"
)

// QuizQuestion is a multiple choice question. It is never mutated once generated.
type QuizQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// NewQuizQuestion creates a new QuizQuestion instance
func NewQuizQuestion(prompt string, options []string, correctIndex int) QuizQuestion {
	opts := make([]string, len(options))
	copy(opts, options)
	return QuizQuestion{
		Prompt:       prompt,
		Options:      opts,
		CorrectIndex: correctIndex,
	}
}

// Validate validates the question
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return NewInvalidInputError("question prompt is required")
	}
	if len(q.Options) < 2 {
		return NewInvalidInputError(fmt.Sprintf("question %q needs at least two options", q.Prompt))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return NewInvalidInputError(fmt.Sprintf("question %q has correct index %d outside its %d options",
			q.Prompt, q.CorrectIndex, len(q.Options)))
	}
	return nil
}

// CorrectOption returns the text of the correct option.
func (q QuizQuestion) CorrectOption() string {
	return q.Options[q.CorrectIndex]
}

// AnswerOutcome is the grading of one submitted answer, shown while revealed.
type AnswerOutcome struct {
	QuestionIndex  int    `json:"question_index"`
	SubmittedIndex int    `json:"submitted_index"`
	CorrectIndex   int    `json:"correct_index"`
	CorrectOption  string `json:"correct_option"`
	Correct        bool   `json:"correct"`
}

// QuestionOutcome is one entry of a finished attempt.
type QuestionOutcome struct {
	Question       QuizQuestion `json:"question"`
	SubmittedIndex int          `json:"submitted_index"`
	Correct        bool         `json:"correct"`
}

// QuizResult summarises a completed attempt.
type QuizResult struct {
	CorrectCount int               `json:"correct_count"`
	TotalCount   int               `json:"total_count"`
	Percentage   int               `json:"percentage"`
	Outcomes     []QuestionOutcome `json:"outcomes"`
}

// QuizSnapshot is the read-only view of an attempt handed to the rendering layer.
type QuizSnapshot struct {
	Phase          QuizPhase      `json:"phase"`
	QuestionIndex  int            `json:"question_index"`
	TotalQuestions int            `json:"total_questions"`
	Question       *QuizQuestion  `json:"question,omitempty"`
	SelectedIndex  *int           `json:"selected_index,omitempty"`
	Revealed       bool           `json:"revealed"`
	LastOutcome    *AnswerOutcome `json:"last_outcome,omitempty"`
	CorrectCount   int            `json:"correct_count"`
	AnsweredCount  int            `json:"answered_count"`
	Completed      bool           `json:"completed"`
	Result         *QuizResult    `json:"result,omitempty"`
}
