package grading

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// fakeTx реализует repository.SubmissionTx поверх map для тестов движка
type fakeTx struct {
	questions map[uint]entity.Question
	options   map[uint]entity.Option
	answers   map[uint]entity.StudentAnswer // ключ question_id
	upsertErr error
	lookupErr error
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		questions: map[uint]entity.Question{},
		options:   map[uint]entity.Option{},
		answers:   map[uint]entity.StudentAnswer{},
	}
}

func (f *fakeTx) addQuestion(quizID, id uint, marks int, correctOptionID uint, otherOptionIDs ...uint) {
	f.questions[id] = entity.Question{ID: id, QuizID: quizID, Marks: marks}
	f.options[correctOptionID] = entity.Option{ID: correctOptionID, QuestionID: id, IsCorrect: true}
	for _, o := range otherOptionIDs {
		f.options[o] = entity.Option{ID: o, QuestionID: id}
	}
}

func (f *fakeTx) LockAttempt(attemptID uint) (*entity.Attempt, error) { return nil, apperrors.ErrNotFound }
func (f *fakeTx) GetQuiz(quizID uint) (*entity.Quiz, error)         { return nil, apperrors.ErrNotFound }

func (f *fakeTx) GetQuestionInQuiz(quizID, questionID uint) (*entity.Question, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	q, ok := f.questions[questionID]
	if !ok || q.QuizID != quizID {
		return nil, apperrors.ErrNotFound
	}
	return &q, nil
}

func (f *fakeTx) GetOptionForQuestion(questionID, optionID uint) (*entity.Option, error) {
	o, ok := f.options[optionID]
	if !ok || o.QuestionID != questionID {
		return nil, apperrors.ErrNotFound
	}
	return &o, nil
}

func (f *fakeTx) UpsertAnswer(answer *entity.StudentAnswer) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.answers[answer.QuestionID] = *answer
	return nil
}

func (f *fakeTx) CompleteAttempt(attempt *entity.Attempt) error { return nil }

func TestEngine_Grade(t *testing.T) {
	tx := newFakeTx()
	tx.addQuestion(1, 10, 5, 101, 102)
	tx.addQuestion(1, 20, 5, 201, 202)
	tx.addQuestion(2, 30, 7, 301) // вопрос другой викторины

	attempt := &entity.Attempt{ID: 9, QuizID: 1}

	t.Run("один верный один неверный", func(t *testing.T) {
		tally, err := NewEngine().Grade(tx, attempt, []Answer{{10, 101}, {20, 202}})
		require.NoError(t, err)
		assert.Equal(t, Tally{Score: 5, MaxScore: 10, Correct: 1, Incorrect: 1}, tally)
		assert.True(t, tx.answers[10].IsCorrect)
		assert.False(t, tx.answers[20].IsCorrect)
		assert.Equal(t, uint(202), *tx.answers[20].SelectedOptionID)
	})

	t.Run("чужой вопрос и чужой вариант пропускаются", func(t *testing.T) {
		tally, err := NewEngine().Grade(tx, attempt, []Answer{{30, 301}, {10, 201}, {99, 1}, {20, 201}})
		require.NoError(t, err)
		assert.Equal(t, Tally{Score: 5, MaxScore: 5, Correct: 1, Skipped: 3}, tally)
	})

	t.Run("пустой список", func(t *testing.T) {
		tally, err := NewEngine().Grade(tx, attempt, nil)
		require.NoError(t, err)
		assert.Equal(t, Tally{}, tally)
	})
}

func TestEngine_Grade_UnexpectedErrorAborts(t *testing.T) {
	tx := newFakeTx()
	tx.addQuestion(1, 10, 5, 101)
	tx.upsertErr = errors.New("connection reset")

	_, err := NewEngine().Grade(tx, &entity.Attempt{ID: 1, QuizID: 1}, []Answer{{10, 101}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	tx.upsertErr = nil
	tx.lookupErr = errors.New("db down")
	_, err = NewEngine().Grade(tx, &entity.Attempt{ID: 1, QuizID: 1}, []Answer{{10, 101}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFinalize(t *testing.T) {
	quiz := &entity.Quiz{ID: 1, PassingMarks: 6}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		tally       Tally
		wantPercent float64
		wantPassed  bool
	}{
		{"5 из 10", Tally{Score: 5, MaxScore: 10, Correct: 1, Incorrect: 1}, 50.0, false},
		{"10 из 10", Tally{Score: 10, MaxScore: 10, Correct: 2}, 100.0, true},
		{"ровно проходной", Tally{Score: 6, MaxScore: 10}, 60.0, true},
		{"нет отвеченных", Tally{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := &entity.Attempt{ID: 1, QuizID: 1, StartTime: now.Add(-10 * time.Minute), Status: entity.AttemptStatusInProgress}
			Finalize(attempt, quiz, tt.tally, 120, now)

			require.NotNil(t, attempt.Score)
			assert.Equal(t, tt.tally.Score, *attempt.Score)
			assert.Equal(t, tt.tally.MaxScore, attempt.MaxScore)
			assert.Equal(t, tt.wantPercent, *attempt.Percentage)
			assert.Equal(t, tt.wantPassed, *attempt.Passed)
			assert.Equal(t, now, *attempt.EndTime)
			assert.Equal(t, 120, attempt.TimeSpent)
			assert.Equal(t, entity.AttemptStatusInProgress, attempt.Status, "статус меняет только хранилище")
		})
	}
}

func TestFinalize_PercentageExact(t *testing.T) {
	quiz := &entity.Quiz{PassingMarks: 1}
	for score := 0; score <= 7; score++ {
		attempt := &entity.Attempt{}
		Finalize(attempt, quiz, Tally{Score: score, MaxScore: 7}, 0, time.Now())
		assert.Equal(t, float64(score)/float64(7)*100, *attempt.Percentage)
		assert.Equal(t, score >= 1, *attempt.Passed)
	}
}

func TestFinalize_TimeSpentClampedToElapsed(t *testing.T) {
	now := time.Now()
	attempt := &entity.Attempt{StartTime: now.Add(-30 * time.Second)}
	Finalize(attempt, &entity.Quiz{}, Tally{}, 3600, now)
	assert.Equal(t, 30, attempt.TimeSpent)

	attempt = &entity.Attempt{StartTime: now.Add(-30 * time.Second)}
	Finalize(attempt, &entity.Quiz{}, Tally{}, -5, now)
	assert.Equal(t, 0, attempt.TimeSpent)
}
