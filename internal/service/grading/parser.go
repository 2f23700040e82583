package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// Answer пара (вопрос, выбранный вариант) из payload
type Answer struct {
	QuestionID uint
	OptionID   uint
}

// Submission разобранный payload отправки
type Submission struct {
	// Answers в порядке первого появления вопроса в payload; один элемент на вопрос
	Answers []Answer
	// TimeSpent время в секундах, присланное клиентом (уже очищенное)
	TimeSpent int
	// Skipped количество записей, которые не удалось разобрать
	Skipped int
}

// ParseSubmission разбирает тело запроса вида
// {"answers": {"<question_id>": "<option_id>", ...}, "time_spent": N}.
//
// Тело не-объект или answers не-объект -> ErrInvalidRequest.
// Отдельные нечисловые записи пропускаются. Повтор вопроса: побеждает последнее значение.
func ParseSubmission(body []byte) (*Submission, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	sub := &Submission{Answers: []Answer{}}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, invalid("read key: %v", err)
		}
		key, _ := keyTok.(string)

		switch key {
		case "answers":
			answers, skipped, err := parseAnswers(dec)
			if err != nil {
				return nil, err
			}
			// повторный ключ answers заменяет предыдущий, как в обычном JSON-декодере
			sub.Answers, sub.Skipped = answers, skipped
		case "time_spent":
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, invalid("read time_spent: %v", err)
			}
			sub.TimeSpent = SanitizeTimeSpent(raw)
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, invalid("read %q: %v", key, err)
			}
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	// после объекта допустимы только пробелы
	if _, err := dec.Token(); err != io.EOF {
		return nil, invalid("trailing data after JSON object")
	}

	return sub, nil
}

func parseAnswers(dec *json.Decoder) ([]Answer, int, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, 0, fmt.Errorf("%w: answers must be an object", apperrors.ErrInvalidRequest)
	}

	answers := []Answer{}
	index := make(map[uint]int)
	skipped := 0

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, 0, invalid("read answer key: %v", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, 0, invalid("read answer for %q: %v", key, err)
		}

		questionID, ok := parseID(key)
		if !ok {
			log.Printf("[SubmissionParser] Пропуск записи: некорректный ID вопроса %q", key)
			skipped++
			continue
		}
		optionID, ok := parseOptionID(raw)
		if !ok {
			log.Printf("[SubmissionParser] Пропуск записи для Q%d: некорректный ID варианта %s", questionID, string(raw))
			skipped++
			continue
		}

		if i, seen := index[questionID]; seen {
			answers[i].OptionID = optionID
			continue
		}
		index[questionID] = len(answers)
		answers = append(answers, Answer{QuestionID: questionID, OptionID: optionID})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, 0, err
	}
	return answers, skipped, nil
}

// parseOptionID принимает строку "12" или целое число 12
func parseOptionID(raw json.RawMessage) (uint, bool) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	switch val := v.(type) {
	case string:
		return parseID(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return toID(n)
		}
		f, err := val.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return toID(int64(f))
	}
	return 0, false
}

func parseID(s string) (uint, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return toID(n)
}

func toID(n int64) (uint, bool) {
	if n <= 0 || n > math.MaxUint32 {
		return 0, false
	}
	return uint(n), true
}

// SanitizeTimeSpent приводит присланное клиентом время к неотрицательному целому.
// Дробное значение отбрасывается до целого, мусор даёт 0.
func SanitizeTimeSpent(raw json.RawMessage) int {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0
	}

	var f float64
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return clampSeconds(float64(n))
		}
		parsed, err := val.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return clampSeconds(float64(n))
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	return clampSeconds(math.Trunc(f))
}

func clampSeconds(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return invalid("malformed JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return invalid("expected %q, got %v", want, tok)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidRequest, fmt.Sprintf(format, args...))
}
