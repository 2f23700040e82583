package analytics

import (
	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/pkg/mathx"
)

// gradeBucket диапазон процента; проверяется по убыванию нижней границы
type gradeBucket struct {
	label string
	min   float64
}

var gradeBuckets = []gradeBucket{
	{"90-100", 90},
	{"80-89", 80},
	{"70-79", 70},
	{"60-69", 60},
	{"50-59", 50},
	{"0-49", 0},
}

// BucketLabels метки корзин в порядке отображения
func BucketLabels() []string {
	labels := make([]string, len(gradeBuckets))
	for i, b := range gradeBuckets {
		labels[i] = b.label
	}
	return labels
}

// BucketFor возвращает метку корзины для процента.
// Значения ниже 0 попадают в "0-49", выше 100 в "90-100".
func BucketFor(percentage float64) string {
	for _, b := range gradeBuckets {
		if percentage >= b.min {
			return b.label
		}
	}
	return gradeBuckets[len(gradeBuckets)-1].label
}

// BucketCount количество попыток в корзине
type BucketCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary сводная статистика по набору попыток
type Summary struct {
	TotalAttempts     int           `json:"total_attempts"`
	PassedCount       int           `json:"passed_count"`
	FailedCount       int           `json:"failed_count"`
	AverageScore      float64       `json:"average_score"`
	BestScore         int           `json:"best_score"`
	WorstScore        int           `json:"worst_score"`
	PassRate          float64       `json:"pass_rate"`
	GradeDistribution []BucketCount `json:"grade_distribution"`
}

// Summarize считает распределение оценок и сводку по попыткам.
// Незавершённые попытки не учитываются; попытки без процента не попадают в распределение.
// Одна функция для всех дашбордов: набор попыток выбирает вызывающий.
func Summarize(attempts []entity.Attempt) Summary {
	summary := Summary{GradeDistribution: make([]BucketCount, len(gradeBuckets))}
	for i, b := range gradeBuckets {
		summary.GradeDistribution[i] = BucketCount{Label: b.label}
	}

	var (
		scoreSum    int
		scoredCount int
	)

	for i := range attempts {
		a := &attempts[i]
		if !a.IsCompleted() {
			continue
		}
		summary.TotalAttempts++

		if a.Passed != nil && *a.Passed {
			summary.PassedCount++
		} else {
			summary.FailedCount++
		}

		if a.Percentage != nil {
			label := BucketFor(*a.Percentage)
			for j := range summary.GradeDistribution {
				if summary.GradeDistribution[j].Label == label {
					summary.GradeDistribution[j].Count++
					break
				}
			}
		}

		if a.Score != nil {
			score := *a.Score
			if scoredCount == 0 || score > summary.BestScore {
				summary.BestScore = score
			}
			if scoredCount == 0 || score < summary.WorstScore {
				summary.WorstScore = score
			}
			scoreSum += score
			scoredCount++
		}
	}

	if scoredCount > 0 {
		summary.AverageScore = mathx.Round(float64(scoreSum)/float64(scoredCount), 2)
	}
	if summary.TotalAttempts > 0 {
		summary.PassRate = mathx.Round(float64(summary.PassedCount)/float64(summary.TotalAttempts)*100, 1)
	}

	return summary
}
