package model

import "time"

// ResultsExport is the top-level structure written by the export command.
type ResultsExport struct {
	WorksheetID    int64           `json:"worksheet_id" yaml:"worksheet_id"`
	Title          string          `json:"title" yaml:"title"`
	ExportedAt     time.Time       `json:"exported_at" yaml:"exported_at"`
	NumQuestions   int             `json:"num_questions" yaml:"num_questions"`
	AveragePercent float64         `json:"average_percent" yaml:"average_percent"`
	Results        []StudentResult `json:"results" yaml:"results"`
}

// StudentResult holds one student's graded submission for export.
type StudentResult struct {
	ResultID       int64            `json:"result_id" yaml:"result_id"`
	StudentName    string           `json:"student_name" yaml:"student_name"`
	ClassName      string           `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	CompletionTime int              `json:"completion_time" yaml:"completion_time"`
	TotalScore     float64          `json:"total_score" yaml:"total_score"`
	MaxScore       float64          `json:"max_score" yaml:"max_score"`
	Percentage     float64          `json:"percentage" yaml:"percentage"`
	Reviewed       bool             `json:"reviewed" yaml:"reviewed"`
	Questions      []QuestionResult `json:"questions" yaml:"questions"`
}

// NewResultsExport builds an export for one worksheet from its grading results.
// Results that belong to other worksheets are skipped.
func NewResultsExport(w Worksheet, results []GradingResult, now time.Time) ResultsExport {
	export := ResultsExport{
		WorksheetID:  w.ID,
		Title:        w.Title,
		ExportedAt:   now,
		NumQuestions: len(w.Questions),
		Results:      []StudentResult{},
	}
	var sum float64
	for _, r := range results {
		if r.WorksheetID != w.ID {
			continue
		}
		export.Results = append(export.Results, StudentResult{
			ResultID:       r.ID,
			StudentName:    r.StudentName,
			ClassName:      r.ClassName,
			CompletionTime: r.CompletionTime,
			TotalScore:     r.TotalScore,
			MaxScore:       r.MaxScore,
			Percentage:     r.Percentage,
			Reviewed:       r.IsReviewed,
			Questions:      r.QuestionResults,
		})
		sum += r.Percentage
	}
	if n := len(export.Results); n > 0 {
		export.AveragePercent = sum / float64(n)
	}
	return export
}
