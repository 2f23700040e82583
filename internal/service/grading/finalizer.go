package grading

import (
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// Percentage score / maxScore * 100; 0 при maxScore == 0
func Percentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return float64(score) / float64(maxScore) * 100
}

// Finalize заполняет итоговые поля попытки. Статус меняет CompleteAttempt в хранилище,
// условным UPDATE только для in_progress.
//
// timeSpent от клиента ограничивается временем, прошедшим с начала попытки по часам сервера.
func Finalize(attempt *entity.Attempt, quiz *entity.Quiz, tally Tally, timeSpent int, now time.Time) {
	score := tally.Score
	percentage := Percentage(tally.Score, tally.MaxScore)
	passed := tally.MaxScore > 0 && tally.Score >= quiz.PassingMarks

	if timeSpent < 0 {
		timeSpent = 0
	}
	if !attempt.StartTime.IsZero() {
		elapsed := int(now.Sub(attempt.StartTime).Seconds())
		if elapsed >= 0 && timeSpent > elapsed {
			timeSpent = elapsed
		}
	}

	end := now
	attempt.Score = &score
	attempt.MaxScore = tally.MaxScore
	attempt.Percentage = &percentage
	attempt.Passed = &passed
	attempt.CorrectAnswers = tally.Correct
	attempt.IncorrectAnswers = tally.Incorrect
	attempt.EndTime = &end
	attempt.TimeSpent = timeSpent
}
