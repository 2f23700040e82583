package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

func TestParseSubmission_Valid(t *testing.T) {
	body := []byte(`{"answers": {"1": "11", "2": 21}, "time_spent": 95}`)

	sub, err := ParseSubmission(body)
	require.NoError(t, err)

	assert.Equal(t, []Answer{{QuestionID: 1, OptionID: 11}, {QuestionID: 2, OptionID: 21}}, sub.Answers)
	assert.Equal(t, 95, sub.TimeSpent)
	assert.Equal(t, 0, sub.Skipped)
}

func TestParseSubmission_MalformedTopLevel(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"пустое тело", ``},
		{"битый JSON", `{"answers": {"1": "2"`},
		{"массив", `[{"1": "2"}]`},
		{"строка", `"answers"`},
		{"null", `null`},
		{"answers массив", `{"answers": ["1", "2"]}`},
		{"answers строка", `{"answers": "1:2"}`},
		{"answers null", `{"answers": null}`},
		{"мусор после объекта", `{"answers": {}} x`},
		{"два объекта", `{}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := ParseSubmission([]byte(tt.body))
			assert.Nil(t, sub)
			assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
		})
	}
}

func TestParseSubmission_MissingFields(t *testing.T) {
	sub, err := ParseSubmission([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, sub.Answers)
	assert.Equal(t, 0, sub.TimeSpent)

	sub, err = ParseSubmission([]byte(" \n{\"time_spent\": 10}\n "))
	require.NoError(t, err)
	assert.Empty(t, sub.Answers)
	assert.Equal(t, 10, sub.TimeSpent)
}

func TestParseSubmission_SkipsBadEntries(t *testing.T) {
	body := []byte(`{"answers": {
		"abc": "1",
		"1": "x",
		"2": "22",
		"0": "5",
		"-3": "5",
		"3": null,
		"4": true,
		"5": 5.5,
		"6": {"id": 1},
		"7": "-1",
		"8": 81.0
	}}`)

	sub, err := ParseSubmission(body)
	require.NoError(t, err)

	assert.Equal(t, []Answer{{QuestionID: 2, OptionID: 22}, {QuestionID: 8, OptionID: 81}}, sub.Answers)
	assert.Equal(t, 9, sub.Skipped)
}

func TestParseSubmission_DuplicateQuestionLastWins(t *testing.T) {
	body := []byte(`{"answers": {"1": "10", "2": "20", "01": "11"}}`)

	sub, err := ParseSubmission(body)
	require.NoError(t, err)

	require.Len(t, sub.Answers, 2)
	assert.Equal(t, Answer{QuestionID: 1, OptionID: 11}, sub.Answers[0])
	assert.Equal(t, Answer{QuestionID: 2, OptionID: 20}, sub.Answers[1])
}

func TestParseSubmission_IgnoresUnknownKeys(t *testing.T) {
	body := []byte(`{"quiz_id": 5, "meta": {"a": [1, 2]}, "answers": {"3": "30"}}`)

	sub, err := ParseSubmission(body)
	require.NoError(t, err)
	assert.Equal(t, []Answer{{QuestionID: 3, OptionID: 30}}, sub.Answers)
}

func TestSanitizeTimeSpent(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`120`, 120},
		{`"45"`, 45},
		{`" 45 "`, 45},
		{`-10`, 0},
		{`"-10"`, 0},
		{`12.9`, 12},
		{`"12.9"`, 12},
		{`"abc"`, 0},
		{`null`, 0},
		{`true`, 0},
		{`[1]`, 0},
		{`1e3`, 1000},
		{`"NaN"`, 0},
		{`"Inf"`, 0},
		{`99999999999`, 2147483647},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTimeSpent(json.RawMessage(tt.raw)))
		})
	}
}
