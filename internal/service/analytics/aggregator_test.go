package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

func completed(score int, percentage float64, passed bool) entity.Attempt {
	return entity.Attempt{
		Status:     entity.AttemptStatusCompleted,
		Score:      &score,
		Percentage: &percentage,
		Passed:     &passed,
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{100, "90-100"},
		{90, "90-100"},
		{89.99, "80-89"},
		{89.5, "80-89"},
		{80, "80-89"},
		{79.9, "70-79"},
		{70, "70-79"},
		{60, "60-69"},
		{59.99, "50-59"},
		{50, "50-59"},
		{49.99, "0-49"},
		{0, "0-49"},
		{-5, "0-49"},
		{120, "90-100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.p), "BucketFor(%v)", tt.p)
	}
}

func TestBucketFor_ExactlyOneBucket(t *testing.T) {
	labels := BucketLabels()
	for p := 0.0; p <= 100.0; p += 0.25 {
		matches := 0
		got := BucketFor(p)
		for _, l := range labels {
			if l == got {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "p=%v", p)
	}
}

func TestSummarize(t *testing.T) {
	attempts := []entity.Attempt{
		completed(10, 100, true),
		completed(9, 90, true),
		completed(5, 50, false),
		completed(0, 0, false),
		{Status: entity.AttemptStatusInProgress},
	}

	s := Summarize(attempts)

	assert.Equal(t, 4, s.TotalAttempts)
	assert.Equal(t, 2, s.PassedCount)
	assert.Equal(t, 2, s.FailedCount)
	assert.Equal(t, 6.0, s.AverageScore)
	assert.Equal(t, 10, s.BestScore)
	assert.Equal(t, 0, s.WorstScore)
	assert.Equal(t, 50.0, s.PassRate)
	assert.Equal(t, []BucketCount{
		{"90-100", 2}, {"80-89", 0}, {"70-79", 0}, {"60-69", 0}, {"50-59", 1}, {"0-49", 1},
	}, s.GradeDistribution)
}

func TestSummarize_Rounding(t *testing.T) {
	attempts := []entity.Attempt{
		completed(1, 10, false),
		completed(1, 10, false),
		completed(2, 20, true),
	}

	s := Summarize(attempts)
	assert.Equal(t, 1.33, s.AverageScore)
	assert.Equal(t, 33.3, s.PassRate)
}

func TestSummarize_NullPercentageExcludedFromDistribution(t *testing.T) {
	score := 3
	passed := false
	attempts := []entity.Attempt{
		{Status: entity.AttemptStatusCompleted, Score: &score, Passed: &passed},
		completed(8, 80, true),
	}

	s := Summarize(attempts)

	total := 0
	for _, b := range s.GradeDistribution {
		total += b.Count
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, 2, s.TotalAttempts)
	assert.Equal(t, 5.5, s.AverageScore)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalAttempts)
	assert.Equal(t, 0.0, s.PassRate)
	assert.Equal(t, 0.0, s.AverageScore)
	assert.Len(t, s.GradeDistribution, 6)
}
