package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	"github.com/yourusername/quizmaster-api/internal/handler/dto"
	"github.com/yourusername/quizmaster-api/internal/service"
	"github.com/yourusername/quizmaster-api/internal/service/analytics"
)

type quizService interface {
	CreateQuiz(teacherID uint, in service.QuizInput, questions []service.QuestionInput) (*entity.Quiz, error)
	ListActive(filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error)
	ListOwn(teacherID uint, limit, offset int) ([]service.QuizWithCounts, int64, error)
	GetOwn(teacherID, quizID uint) (*entity.Quiz, error)
	UpdateQuiz(teacherID, quizID uint, in service.QuizInput) (*entity.Quiz, error)
	DeleteQuiz(teacherID, quizID uint) error
	ListQuestions(teacherID, quizID uint) ([]entity.Question, error)
	AddQuestions(teacherID, quizID uint, questions []service.QuestionInput) ([]entity.Question, error)
	DeleteQuestion(teacherID, questionID uint) error
	ReplaceOptions(teacherID, questionID uint, in []service.OptionInput) (*entity.Question, error)
}

type quizResultsService interface {
	QuizResults(teacherID, quizID uint) (*service.QuizResults, error)
}

// QuizHandler обрабатывает запросы, связанные с викторинами
type QuizHandler struct {
	quizService    quizService
	resultsService quizResultsService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService quizService, resultsService quizResultsService) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		resultsService: resultsService,
	}
}

// ListQuizzes GET /api/quizzes: активные викторины с фильтрами и пагинацией
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	page, pageSize, offset := pageParams(c)
	filters := repository.QuizFilters{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"), // по title/description
	}

	quizzes, total, err := h.quizService.ListActive(filters, pageSize, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quizzes": dto.NewListQuizResponse(quizzes),
		"total":   total,
		"page":    page,
		"size":    pageSize,
	})
}

// CreateQuiz POST /api/teacher/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	quiz, err := h.quizService.CreateQuiz(teacherID, quizInput(req.QuizRequest), questionInputs(req.Questions))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Quiz %q created successfully with %d questions!", quiz.Title, len(quiz.Questions)),
		"quiz":    quiz,
	})
}

// ListOwnQuizzes GET /api/teacher/quizzes
func (h *QuizHandler) ListOwnQuizzes(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, pageSize, offset := pageParams(c)

	quizzes, total, err := h.quizService.ListOwn(teacherID, pageSize, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quizzes": quizzes,
		"total":   total,
		"page":    page,
		"size":    pageSize,
	})
}

// GetOwnQuiz GET /api/teacher/quizzes/:id: викторина с вопросами и правильными ответами
func (h *QuizHandler) GetOwnQuiz(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	quiz, err := h.quizService.GetOwn(teacherID, quizID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// UpdateQuiz PUT /api/teacher/quizzes/:id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	var req dto.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	quiz, err := h.quizService.UpdateQuiz(teacherID, quizID, quizInput(req))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz updated successfully!", "quiz": dto.NewQuizResponse(quiz, false)})
}

// DeleteQuiz DELETE /api/teacher/quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	if err := h.quizService.DeleteQuiz(teacherID, quizID); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully!"})
}

// ListQuestions GET /api/teacher/quizzes/:id/questions
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	questions, err := h.quizService.ListQuestions(teacherID, quizID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions, "total": len(questions)})
}

// AddQuestions POST /api/teacher/quizzes/:id/questions
func (h *QuizHandler) AddQuestions(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	var req dto.AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	added, err := h.quizService.AddQuestions(teacherID, quizID, questionInputs(req.Questions))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   fmt.Sprintf("%d questions added successfully!", len(added)),
		"questions": added,
	})
}

// DeleteQuestion DELETE /api/teacher/questions/:id
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	questionID := c.MustGet("questionID").(uint)

	if err := h.quizService.DeleteQuestion(teacherID, questionID); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully!"})
}

// ReplaceOptions PUT /api/teacher/questions/:id/options
func (h *QuizHandler) ReplaceOptions(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	questionID := c.MustGet("questionID").(uint)

	var req dto.ReplaceOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	options := make([]service.OptionInput, len(req.Options))
	for i, o := range req.Options {
		options[i] = service.OptionInput{Text: o.Text, IsCorrect: o.IsCorrect}
	}

	question, err := h.quizService.ReplaceOptions(teacherID, questionID, options)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Options updated successfully!", "question": question})
}

// GetQuizResults GET /api/teacher/quizzes/:id/results
func (h *QuizHandler) GetQuizResults(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	results, err := h.resultsService.QuizResults(teacherID, quizID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ExportQuizResults экспортирует завершённые попытки викторины в CSV или Excel
// GET /api/teacher/quizzes/:id/results/export?format=csv|xlsx
func (h *QuizHandler) ExportQuizResults(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	results, err := h.resultsService.QuizResults(teacherID, quizID)
	if err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz_%d_results_%s", quizID, time.Now().Format("2006-01-02"))
	rows := exportRows(results.Attempts)

	switch format {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		h.exportCSV(c, rows, filename)
	}
}

var exportHeaders = []string{"Студент", "Email", "Баллы", "Максимум", "Процент", "Оценка", "Сдал", "Правильных", "Неправильных", "Время (сек)", "Завершено"}

// exportRow одна строка экспорта; числовые поля остаются числами для Excel
type exportRow struct {
	Student    string
	Email      string
	Score      int
	MaxScore   int
	Percentage float64
	Grade      string
	Passed     string
	Correct    int
	Incorrect  int
	TimeSpent  int
	FinishedAt string
}

func exportRows(attempts []entity.Attempt) []exportRow {
	rows := make([]exportRow, 0, len(attempts))
	for _, a := range attempts {
		row := exportRow{
			MaxScore:  a.MaxScore,
			Passed:    "Нет",
			Correct:   a.CorrectAnswers,
			Incorrect: a.IncorrectAnswers,
			TimeSpent: a.TimeSpent,
		}
		if a.Student != nil {
			row.Student = sanitizeForExcel(a.Student.FullName())
			row.Email = sanitizeForExcel(a.Student.Email)
		}
		if a.Score != nil {
			row.Score = *a.Score
		}
		if a.Percentage != nil {
			row.Percentage = *a.Percentage
			row.Grade = analytics.BucketFor(*a.Percentage)
		}
		if a.Passed != nil && *a.Passed {
			row.Passed = "Да"
		}
		if a.EndTime != nil {
			row.FinishedAt = a.EndTime.Format("2006-01-02 15:04")
		}
		rows = append(rows, row)
	}
	return rows
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *QuizHandler) exportCSV(c *gin.Context, rows []exportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			r.Student,
			r.Email,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.MaxScore),
			strconv.FormatFloat(r.Percentage, 'f', 2, 64),
			r.Grade,
			r.Passed,
			strconv.Itoa(r.Correct),
			strconv.Itoa(r.Incorrect),
			strconv.Itoa(r.TimeSpent),
			r.FinishedAt,
		})
	}
}

// exportXLSX экспортирует результаты в Excel через StreamWriter
func (h *QuizHandler) exportXLSX(c *gin.Context, rows []exportRow, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuizHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, title := range exportHeaders {
		headers[i] = title
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuizHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{r.Student, r.Email, r.Score, r.MaxScore, r.Percentage, r.Grade, r.Passed, r.Correct, r.Incorrect, r.TimeSpent, r.FinishedAt}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuizHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuizHandler] Ошибка при Flush: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuizHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

func quizInput(req dto.QuizRequest) service.QuizInput {
	return service.QuizInput{
		Title:        req.Title,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Description:  req.Description,
		TotalMarks:   req.TotalMarks,
		TimeLimit:    req.TimeLimit,
		PassingMarks: req.PassingMarks,
		Status:       req.Status,
	}
}

func questionInputs(reqs []dto.QuestionRequest) []service.QuestionInput {
	questions := make([]service.QuestionInput, len(reqs))
	for i, q := range reqs {
		questions[i] = service.QuestionInput{
			Text:         q.Text,
			Type:         q.Type,
			Marks:        q.Marks,
			Explanation:  q.Explanation,
			Options:      q.Options,
			CorrectIndex: q.CorrectOption,
		}
	}
	return questions
}
