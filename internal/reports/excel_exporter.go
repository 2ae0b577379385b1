package reports

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/scoring"
	"github.com/xuri/excelize/v2"
)

const (
	SheetStudents  = "Alunos"
	SheetAnswerKey = "Gabarito"
	SheetStats     = "Estatísticas"
	SheetQuestions = "Análise por Questão"
)

var ErrEmptyReport = errors.New("report has no students")

// ExamReport is everything rendered into one workbook. Results must line up
// with Students.
type ExamReport struct {
	Students         []models.StudentAnswerSheet
	AnswerKey        []string
	Areas            []models.AreaSegment
	Results          []models.ScoreResult
	Statistics       *models.ExamStatistics
	QuestionContents []models.QuestionContent
}

type styles struct {
	header  int
	correct int
	wrong   int
	medium  int
}

// RenderExcel builds the xlsx workbook for report.
func RenderExcel(report *ExamReport) ([]byte, error) {
	if report == nil || len(report.Students) == 0 {
		return nil, ErrEmptyReport
	}
	if len(report.Results) != len(report.Students) {
		return nil, fmt.Errorf("report has %d results for %d students", len(report.Results), len(report.Students))
	}

	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", SheetStudents); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeStudentsSheet(f, st, report); err != nil {
		return nil, err
	}
	if err := writeAnswerKeySheet(f, st, report); err != nil {
		return nil, err
	}
	if report.Statistics != nil {
		if err := writeStatisticsSheet(f, st, report.Statistics); err != nil {
			return nil, err
		}
		if err := writeQuestionSheet(f, st, report); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return st, fmt.Errorf("failed to create header style: %w", err)
	}
	st.correct, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "006100"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C6EFCE"}},
	})
	if err != nil {
		return st, fmt.Errorf("failed to create cell style: %w", err)
	}
	st.wrong, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return st, fmt.Errorf("failed to create cell style: %w", err)
	}
	st.medium, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "9C5700"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFE699"}},
	})
	if err != nil {
		return st, fmt.Errorf("failed to create cell style: %w", err)
	}
	return st, nil
}

func writeHeader(f *excelize.File, sheet string, headerStyle int, headers []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleCell(f *excelize.File, sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

func writeStudentsSheet(f *excelize.File, st styles, report *ExamReport) error {
	maxAnswers := 0
	for _, s := range report.Students {
		maxAnswers = max(maxAnswers, len(s.Answers))
	}

	headers := []interface{}{"#", "Matrícula", "Nome", "Turma", "Acertos", "Erros", "Nota TCT"}
	for _, area := range report.Areas {
		headers = append(headers, area.Area)
	}
	headers = append(headers, "Confiança (%)", "Página")
	answerCol := len(headers) + 1
	for i := 1; i <= maxAnswers; i++ {
		headers = append(headers, fmt.Sprintf("Q%d", i))
	}
	if err := writeHeader(f, SheetStudents, st.header, headers); err != nil {
		return fmt.Errorf("failed to write student headers: %w", err)
	}

	passingScore := scoring.DefaultPassingScore
	if report.Statistics != nil {
		passingScore = report.Statistics.PassingScore
	}

	for i, student := range report.Students {
		result := report.Results[i]
		rowNum := i + 2
		correct := scoring.CountCorrect(student.Answers, report.AnswerKey)

		row := []interface{}{
			i + 1,
			student.StudentNumber,
			student.StudentName,
			student.Class,
			correct,
			scoring.CountAnswered(student.Answers, len(report.AnswerKey)) - correct,
			result.AverageScore,
		}
		for _, area := range report.Areas {
			row = append(row, result.AreaScores[area.Area])
		}
		if student.Confidence != nil {
			row = append(row, int(*student.Confidence+0.5))
		} else {
			row = append(row, "N/A")
		}
		row = append(row, max(student.PageNumber, 1))
		for q := 0; q < maxAnswers; q++ {
			if q < len(student.Answers) {
				row = append(row, student.Answers[q])
			} else {
				row = append(row, "")
			}
		}
		if err := writeRow(f, SheetStudents, rowNum, row); err != nil {
			return fmt.Errorf("failed to write student row: %w", err)
		}

		scoreStyle := st.wrong
		if result.AverageScore >= passingScore {
			scoreStyle = st.correct
		}
		if err := styleCell(f, SheetStudents, 7, rowNum, scoreStyle); err != nil {
			return err
		}

		for q, answer := range student.Answers {
			if answer == "" || q >= len(report.AnswerKey) || report.AnswerKey[q] == "" {
				continue
			}
			style := st.wrong
			if scoring.IsCorrect(answer, report.AnswerKey[q]) {
				style = st.correct
			}
			if err := styleCell(f, SheetStudents, answerCol+q, rowNum, style); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(SheetStudents, "A", "A", 5); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetStudents, "B", "B", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetStudents, "C", "C", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetStudents, "D", "G", 11); err != nil {
		return err
	}

	return f.SetPanes(SheetStudents, &excelize.Panes{
		Freeze:      true,
		XSplit:      4,
		YSplit:      1,
		TopLeftCell: "E2",
		ActivePane:  "bottomRight",
	})
}

func writeAnswerKeySheet(f *excelize.File, st styles, report *ExamReport) error {
	if _, err := f.NewSheet(SheetAnswerKey); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeHeader(f, SheetAnswerKey, st.header, []interface{}{"Questão", "Resposta Correta", "Conteúdo"}); err != nil {
		return err
	}

	contents := contentByQuestion(report.QuestionContents)
	for i, answer := range report.AnswerKey {
		if err := writeRow(f, SheetAnswerKey, i+2, []interface{}{i + 1, answer, contents[i+1]}); err != nil {
			return fmt.Errorf("failed to write answer key row: %w", err)
		}
	}

	if err := f.SetColWidth(SheetAnswerKey, "A", "A", 10); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetAnswerKey, "B", "B", 18); err != nil {
		return err
	}
	return f.SetColWidth(SheetAnswerKey, "C", "C", 40)
}

func contentByQuestion(contents []models.QuestionContent) map[int]string {
	out := make(map[int]string, len(contents))
	for _, c := range contents {
		out[c.QuestionNumber] = c.Content
	}
	return out
}

func writeStatisticsSheet(f *excelize.File, st styles, stats *models.ExamStatistics) error {
	if _, err := f.NewSheet(SheetStats); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeHeader(f, SheetStats, st.header, []interface{}{"Estatística", "Valor"}); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Total de Alunos", stats.TotalStudents},
		{"Média Geral", stats.AverageScore},
		{"Maior Nota", stats.HighestScore},
		{"Menor Nota", stats.LowestScore},
		{"Nota de Aprovação", stats.PassingScore},
		{"Taxa de Aprovação (%)", stats.PassingRate},
	}
	next := 2
	for _, row := range rows {
		if err := writeRow(f, SheetStats, next, row); err != nil {
			return err
		}
		next++
	}

	if len(stats.ClassStats) > 0 {
		next++
		classHeader := []interface{}{"Turma", "Alunos", "Média", "Aprovação (%)", "Acertos", "Erros"}
		cell, _ := excelize.CoordinatesToCellName(1, next)
		if err := f.SetSheetRow(SheetStats, cell, &classHeader); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(classHeader), next)
		if err := f.SetCellStyle(SheetStats, cell, last, st.header); err != nil {
			return err
		}
		for _, cs := range stats.ClassStats {
			next++
			row := []interface{}{cs.Class, cs.TotalStudents, cs.AverageScore, cs.PassingRate, cs.TotalCorrect, cs.TotalWrong}
			if err := writeRow(f, SheetStats, next, row); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(SheetStats, "A", "A", 25); err != nil {
		return err
	}
	return f.SetColWidth(SheetStats, "B", "F", 15)
}

func writeQuestionSheet(f *excelize.File, st styles, report *ExamReport) error {
	if _, err := f.NewSheet(SheetQuestions); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeHeader(f, SheetQuestions, st.header, []interface{}{"Questão", "Acertos", "Erros", "% Acertos", "Conteúdo"}); err != nil {
		return err
	}

	contents := contentByQuestion(report.QuestionContents)
	for i, qs := range report.Statistics.QuestionStats {
		rowNum := i + 2
		content := qs.Content
		if content == "" {
			content = contents[qs.QuestionNumber]
		}
		row := []interface{}{qs.QuestionNumber, qs.CorrectCount, qs.WrongCount, qs.CorrectPercentage, content}
		if err := writeRow(f, SheetQuestions, rowNum, row); err != nil {
			return fmt.Errorf("failed to write question row: %w", err)
		}
		if err := styleCell(f, SheetQuestions, 4, rowNum, percentageStyle(st, qs.CorrectPercentage)); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetQuestions, "A", "C", 10); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetQuestions, "D", "D", 12); err != nil {
		return err
	}
	return f.SetColWidth(SheetQuestions, "E", "E", 40)
}

// percentageStyle bands hit rates: below 50 is hard, 50-70 medium, above 70 easy.
func percentageStyle(st styles, pct float64) int {
	switch {
	case pct < 50:
		return st.wrong
	case pct <= 70:
		return st.medium
	default:
		return st.correct
	}
}
