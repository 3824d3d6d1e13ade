package dto

import (
	"encoding/json"
	"testing"

	"studykit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuizStateResponse_HidesCorrectAnswer(t *testing.T) {
	q := domain.NewQuizQuestion("What is JSX?", []string{"A syntax extension", "A database"}, 0)
	snap := domain.QuizSnapshot{
		Phase:          domain.PhaseAwaitingAnswer,
		TotalQuestions: 1,
		Question:       &q,
	}

	body, err := json.Marshal(NewQuizStateResponse(snap))
	require.NoError(t, err)
	assert.NotContains(t, string(body), "correct_index")
	assert.Contains(t, string(body), `"prompt":"What is JSX?"`)
}

func TestNewQuizResultResponse(t *testing.T) {
	q := domain.NewQuizQuestion("2+2?", []string{"3", "4"}, 1)
	resp := NewQuizResultResponse(domain.QuizResult{
		CorrectCount: 0,
		TotalCount:   1,
		Outcomes:     []domain.QuestionOutcome{{Question: q, SubmittedIndex: 0}},
	})

	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, "3", resp.Outcomes[0].SubmittedOption)
	assert.Equal(t, "4", resp.Outcomes[0].CorrectOption)
	assert.False(t, resp.Outcomes[0].Correct)
}

func TestNewExportSessionResponse(t *testing.T) {
	snap := domain.ExportSnapshot{
		Items: []domain.ExportableItem{
			{ID: "a", Category: domain.CategoryCompletePackage, SizeMB: 2.4},
			{ID: "b", Category: domain.CategoryQuiz, SizeMB: 0.856},
		},
		Selected:      []string{"a", "b"},
		SelectedCount: 2,
		AllSelected:   true,
		TotalSize:     3.256,
		CanExport:     true,
	}

	resp := NewExportSessionResponse("s1", snap)
	assert.Equal(t, "3.3 MB", resp.TotalSizeLabel)
	assert.Equal(t, "Complete Package", resp.Items[0].CategoryLabel)
	assert.True(t, resp.Items[1].Selected)
	assert.Nil(t, resp.Job)
}
