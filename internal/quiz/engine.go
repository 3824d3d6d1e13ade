// Package quiz implements the state machine of a single quiz attempt.
//
// An attempt moves AwaitingAnswer -> Revealed -> (AwaitingAnswer | Completed).
// Completed is terminal until Reset. An Engine has a single owner and is not
// safe for concurrent use.
package quiz

import (
	"fmt"

	"studykit/internal/domain"
	"studykit/internal/util"
)

// Engine owns one quiz attempt.
type Engine struct {
	questions []domain.QuizQuestion

	current      int
	selected     int // -1 when nothing is selected
	submitted    []int
	correctCount int
	completed    bool
	revealed     bool
	lastOutcome  *domain.AnswerOutcome
}

// NewEngine creates an Engine positioned on the first question.
// A quiz without questions is completed from the start.
func NewEngine(questions []domain.QuizQuestion) (*Engine, error) {
	e := &Engine{}
	if err := e.ResetWith(questions); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset restarts the attempt over the current questions.
func (e *Engine) Reset() {
	e.restart(e.questions)
}

// ResetWith restarts the attempt over questions. An empty list yields a
// quiz that is completed from the start.
func (e *Engine) ResetWith(questions []domain.QuizQuestion) error {
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return domain.NewInvalidInputError(fmt.Sprintf("question %d: %v", i, err)).
				WithContext("question_index", i)
		}
	}
	next := make([]domain.QuizQuestion, len(questions))
	for i, q := range questions {
		next[i] = domain.NewQuizQuestion(q.Prompt, q.Options, q.CorrectIndex)
	}
	e.restart(next)
	return nil
}

func (e *Engine) restart(next []domain.QuizQuestion) {
	e.questions = next
	e.current = 0
	e.selected = -1
	e.submitted = make([]int, 0, len(next))
	e.correctCount = 0
	e.revealed = false
	e.lastOutcome = nil
	e.completed = len(next) == 0
}

// Phase returns the current state of the attempt.
func (e *Engine) Phase() domain.QuizPhase {
	switch {
	case e.completed:
		return domain.PhaseCompleted
	case e.revealed:
		return domain.PhaseRevealed
	default:
		return domain.PhaseAwaitingAnswer
	}
}

// SelectAnswer marks an option of the active question. A later call overwrites it.
func (e *Engine) SelectAnswer(optionIndex int) error {
	if err := e.requirePhase(domain.PhaseAwaitingAnswer, "select an answer"); err != nil {
		return err
	}
	options := len(e.questions[e.current].Options)
	if optionIndex < 0 || optionIndex >= options {
		return domain.NewOptionOutOfRangeError(optionIndex, options)
	}
	e.selected = optionIndex
	return nil
}

// SubmitAnswer grades the selected option and reveals the outcome.
func (e *Engine) SubmitAnswer() (domain.AnswerOutcome, error) {
	if err := e.requirePhase(domain.PhaseAwaitingAnswer, "submit an answer"); err != nil {
		return domain.AnswerOutcome{}, err
	}
	if e.selected < 0 {
		return domain.AnswerOutcome{}, domain.NewValidationError("answer required").
			WithContext("question_index", e.current)
	}

	q := e.questions[e.current]
	outcome := domain.AnswerOutcome{
		QuestionIndex:  e.current,
		SubmittedIndex: e.selected,
		CorrectIndex:   q.CorrectIndex,
		CorrectOption:  q.CorrectOption(),
		Correct:        e.selected == q.CorrectIndex,
	}

	e.submitted = append(e.submitted, e.selected)
	if outcome.Correct {
		e.correctCount++
	}
	e.revealed = true
	e.lastOutcome = &outcome
	return outcome, nil
}

// Advance leaves the reveal. After the last question the attempt completes and
// the index rests at the question count.
func (e *Engine) Advance() error {
	if err := e.requirePhase(domain.PhaseRevealed, "advance"); err != nil {
		return err
	}

	e.revealed = false
	e.selected = -1
	e.current++
	if e.current == len(e.questions) {
		e.completed = true
	}
	return nil
}

// Result returns the outcome of a completed attempt.
func (e *Engine) Result() (domain.QuizResult, error) {
	if !e.completed {
		return domain.QuizResult{}, domain.NewInvalidStateError("quiz is not completed yet").
			WithContext("phase", string(e.Phase()))
	}

	outcomes := make([]domain.QuestionOutcome, len(e.questions))
	for i, q := range e.questions {
		submitted := e.submitted[i]
		outcomes[i] = domain.QuestionOutcome{
			Question:       q,
			SubmittedIndex: submitted,
			Correct:        submitted == q.CorrectIndex,
		}
	}

	return domain.QuizResult{
		CorrectCount: e.correctCount,
		TotalCount:   len(e.questions),
		Percentage:   util.Percentage(e.correctCount, len(e.questions)),
		Outcomes:     outcomes,
	}, nil
}

// Snapshot returns a copy of the attempt for rendering.
func (e *Engine) Snapshot() domain.QuizSnapshot {
	snap := domain.QuizSnapshot{
		Phase:          e.Phase(),
		QuestionIndex:  e.current,
		TotalQuestions: len(e.questions),
		Revealed:       e.revealed,
		CorrectCount:   e.correctCount,
		AnsweredCount:  len(e.submitted),
		Completed:      e.completed,
	}

	if !e.completed {
		q := e.questions[e.current]
		q = domain.NewQuizQuestion(q.Prompt, q.Options, q.CorrectIndex)
		snap.Question = &q
	}
	if e.selected >= 0 {
		selected := e.selected
		snap.SelectedIndex = &selected
	}
	if e.revealed && e.lastOutcome != nil {
		outcome := *e.lastOutcome
		snap.LastOutcome = &outcome
	}
	if e.completed {
		result, _ := e.Result()
		snap.Result = &result
	}
	return snap
}

// Questions returns the questions of the attempt.
func (e *Engine) Questions() []domain.QuizQuestion {
	out := make([]domain.QuizQuestion, len(e.questions))
	copy(out, e.questions)
	return out
}

func (e *Engine) requirePhase(want domain.QuizPhase, action string) error {
	phase := e.Phase()
	if phase == want {
		return nil
	}
	return domain.NewInvalidStateError(fmt.Sprintf("cannot %s while quiz is %s", action, phase)).
		WithContext("phase", string(phase))
}
