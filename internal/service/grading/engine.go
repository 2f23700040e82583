package grading

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// Tally накопленный результат проверки ответов
type Tally struct {
	Score     int
	MaxScore  int // сумма баллов только по отвеченным вопросам
	Correct   int
	Incorrect int
	Skipped   int
}

// Engine проверяет ответы и сохраняет StudentAnswer внутри транзакции отправки
type Engine struct{}

// NewEngine создает движок проверки
func NewEngine() *Engine {
	return &Engine{}
}

// Grade проверяет каждую пару (вопрос, вариант) и делает upsert ответа.
// Вопрос не из этой викторины или чужой вариант пропускаются.
// Любая другая ошибка прерывает проверку; транзакция откатывается вызывающим.
func (e *Engine) Grade(tx repository.SubmissionTx, attempt *entity.Attempt, answers []Answer) (Tally, error) {
	var tally Tally

	for _, a := range answers {
		question, err := tx.GetQuestionInQuiz(attempt.QuizID, a.QuestionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				log.Printf("[GradingEngine] Attempt #%d: вопрос #%d не принадлежит викторине #%d, пропуск", attempt.ID, a.QuestionID, attempt.QuizID)
				tally.Skipped++
				continue
			}
			return Tally{}, fmt.Errorf("load question #%d: %w", a.QuestionID, err)
		}

		option, err := tx.GetOptionForQuestion(question.ID, a.OptionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				log.Printf("[GradingEngine] Attempt #%d: вариант #%d не принадлежит вопросу #%d, пропуск", attempt.ID, a.OptionID, question.ID)
				tally.Skipped++
				continue
			}
			return Tally{}, fmt.Errorf("load option #%d: %w", a.OptionID, err)
		}

		optionID := option.ID
		answer := &entity.StudentAnswer{
			AttemptID:        attempt.ID,
			QuestionID:       question.ID,
			SelectedOptionID: &optionID,
			IsCorrect:        option.IsCorrect,
		}
		if err := tx.UpsertAnswer(answer); err != nil {
			return Tally{}, fmt.Errorf("save answer for question #%d: %w", question.ID, err)
		}

		tally.MaxScore += question.Marks
		if option.IsCorrect {
			tally.Score += question.Marks
			tally.Correct++
		} else {
			tally.Incorrect++
		}
	}

	return tally, nil
}
