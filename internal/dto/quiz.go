package dto

import "studykit/internal/domain"

// GenerateQuizRequest starts quiz generation for a video
// @Description Request body for generating a quiz
type GenerateQuizRequest struct {
	VideoURL string `json:"video_url"`
}

// GenerateSummaryRequest starts summary processing for a video
type GenerateSummaryRequest struct {
	VideoURL string `json:"video_url"`
}

// SelectAnswerRequest selects an option of the active question
type SelectAnswerRequest struct {
	OptionIndex *int `json:"option_index"`
}

// QuizQuestionResponse is a question as shown before it is answered
type QuizQuestionResponse struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// AnswerOutcomeResponse is the reveal shown after a submit
type AnswerOutcomeResponse struct {
	QuestionIndex  int    `json:"question_index"`
	SubmittedIndex int    `json:"submitted_index"`
	CorrectIndex   int    `json:"correct_index"`
	CorrectOption  string `json:"correct_option"`
	Correct        bool   `json:"correct"`
}

// QuestionOutcomeResponse is one line of the final result
type QuestionOutcomeResponse struct {
	Prompt          string `json:"prompt"`
	SubmittedIndex  int    `json:"submitted_index"`
	SubmittedOption string `json:"submitted_option"`
	CorrectIndex    int    `json:"correct_index"`
	CorrectOption   string `json:"correct_option"`
	Correct         bool   `json:"correct"`
}

// QuizResultResponse summarises a completed quiz
type QuizResultResponse struct {
	CorrectCount int                       `json:"correct_count"`
	TotalCount   int                       `json:"total_count"`
	Percentage   int                       `json:"percentage"`
	Outcomes     []QuestionOutcomeResponse `json:"outcomes"`
}

// QuizStateResponse is the state of the attempt
type QuizStateResponse struct {
	Phase          string                 `json:"phase"`
	QuestionIndex  int                    `json:"question_index"`
	TotalQuestions int                    `json:"total_questions"`
	Question       *QuizQuestionResponse  `json:"question,omitempty"`
	SelectedIndex  *int                   `json:"selected_index,omitempty"`
	Revealed       bool                   `json:"revealed"`
	LastOutcome    *AnswerOutcomeResponse `json:"last_outcome,omitempty"`
	CorrectCount   int                    `json:"correct_count"`
	AnsweredCount  int                    `json:"answered_count"`
	Completed      bool                   `json:"completed"`
	Result         *QuizResultResponse    `json:"result,omitempty"`
}

// Quiz session statuses
const (
	QuizStatusGenerating = "generating"
	QuizStatusReady      = "ready"
	QuizStatusFailed     = "failed"
)

// QuizSessionResponse is everything the quiz view renders
type QuizSessionResponse struct {
	SessionID  string               `json:"session_id"`
	VideoURL   string               `json:"video_url"`
	Status     string               `json:"status"`
	Error      string               `json:"error,omitempty"`
	Generation *JobProgressResponse `json:"generation,omitempty"`
	Quiz       *QuizStateResponse   `json:"quiz,omitempty"`
}

// JobProgressResponse is the progress of a running task
type JobProgressResponse struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Progress int    `json:"progress"`
}

// NewAnswerOutcomeResponse maps a domain outcome
func NewAnswerOutcomeResponse(o domain.AnswerOutcome) *AnswerOutcomeResponse {
	return &AnswerOutcomeResponse{
		QuestionIndex:  o.QuestionIndex,
		SubmittedIndex: o.SubmittedIndex,
		CorrectIndex:   o.CorrectIndex,
		CorrectOption:  o.CorrectOption,
		Correct:        o.Correct,
	}
}

// NewQuizResultResponse maps a domain result
func NewQuizResultResponse(r domain.QuizResult) *QuizResultResponse {
	outcomes := make([]QuestionOutcomeResponse, len(r.Outcomes))
	for i, o := range r.Outcomes {
		outcomes[i] = QuestionOutcomeResponse{
			Prompt:          o.Question.Prompt,
			SubmittedIndex:  o.SubmittedIndex,
			SubmittedOption: o.Question.Options[o.SubmittedIndex],
			CorrectIndex:    o.Question.CorrectIndex,
			CorrectOption:   o.Question.CorrectOption(),
			Correct:         o.Correct,
		}
	}
	return &QuizResultResponse{
		CorrectCount: r.CorrectCount,
		TotalCount:   r.TotalCount,
		Percentage:   r.Percentage,
		Outcomes:     outcomes,
	}
}

// NewQuizStateResponse maps a snapshot. The correct answer stays hidden until revealed.
func NewQuizStateResponse(s domain.QuizSnapshot) *QuizStateResponse {
	resp := &QuizStateResponse{
		Phase:          string(s.Phase),
		QuestionIndex:  s.QuestionIndex,
		TotalQuestions: s.TotalQuestions,
		SelectedIndex:  s.SelectedIndex,
		Revealed:       s.Revealed,
		CorrectCount:   s.CorrectCount,
		AnsweredCount:  s.AnsweredCount,
		Completed:      s.Completed,
	}
	if s.Question != nil {
		resp.Question = &QuizQuestionResponse{
			Prompt:  s.Question.Prompt,
			Options: s.Question.Options,
		}
	}
	if s.LastOutcome != nil {
		resp.LastOutcome = NewAnswerOutcomeResponse(*s.LastOutcome)
	}
	if s.Result != nil {
		resp.Result = NewQuizResultResponse(*s.Result)
	}
	return resp
}
