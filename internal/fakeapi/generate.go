package fakeapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/pavelanni/worksheet/internal/model"
)

const defaultTotalQuestions = 5

func totalQuestions(req model.GenerationRequest) int {
	if req.TotalQuestions > 0 {
		return req.TotalQuestions
	}
	return defaultTotalQuestions
}

// distribute spreads total over subjects, giving the remainder to the first ones.
func distribute(subjects []model.Subject, total int) map[model.Subject]int {
	out := make(map[model.Subject]int, len(subjects))
	if len(subjects) == 0 {
		return out
	}
	base, rem := total/len(subjects), total%len(subjects)
	for i, subj := range subjects {
		n := base
		if i < rem {
			n++
		}
		out[subj] = n
	}
	return out
}

func generate(id int64, req model.GenerationRequest, now time.Time) model.Worksheet {
	total := totalQuestions(req)
	title := req.Title
	if title == "" {
		title = fmt.Sprintf("Worksheet %d", id)
	}
	ws := model.Worksheet{
		ID:             id,
		Title:          title,
		SchoolLevel:    req.SchoolLevel,
		Grade:          req.Grade,
		Difficulty:     req.Difficulty,
		TotalQuestions: total,
		Duration:       total * 2,
		CreatedAt:      &now,
	}

	dist := distribute(req.Subjects, total)
	n := 0
	for _, subj := range req.Subjects {
		var passageID string
		if subj == model.SubjectReading && dist[subj] > 0 {
			passageID = fmt.Sprintf("p%d", len(ws.Passages)+1)
			ws.Passages = append(ws.Passages, model.Passage{
				ID:      passageID,
				Content: "Many students find that reading every day improves their vocabulary.",
			})
		}
		for k, cnt := 0, dist[subj]; k < cnt; k++ {
			n++
			q := model.Question{
				ID:            fmt.Sprintf("q%d", n),
				Number:        n,
				Subject:       subj,
				Format:        model.FormatMultipleChoice,
				Text:          fmt.Sprintf("%s question %d", subj, n),
				Choices:       []string{"A", "B", "C", "D"},
				PassageID:     passageID,
				CorrectAnswer: DefaultAnswer,
				Explanation:   "The answer is " + DefaultAnswer + ".",
			}
			ws.Questions = append(ws.Questions, q)
			if passageID != "" {
				last := len(ws.Passages) - 1
				ws.Passages[last].RelatedQuestions = append(ws.Passages[last].RelatedQuestions, q.ID)
			}
		}
	}
	return ws
}

func grade(ws model.Worksheet, sub model.AnswerSubmission) model.GradingResult {
	res := model.GradingResult{
		WorksheetID:    ws.ID,
		StudentName:    sub.StudentName,
		ClassName:      sub.ClassName,
		CompletionTime: sub.CompletionTime,
	}
	for _, q := range ws.Questions {
		answer := sub.Answers[q.ID]
		correct := answer != "" && strings.EqualFold(strings.TrimSpace(answer), q.CorrectAnswer)
		qr := model.QuestionResult{
			QuestionID:    q.ID,
			StudentAnswer: answer,
			CorrectAnswer: q.CorrectAnswer,
			MaxScore:      1,
			IsCorrect:     correct,
			GradingMethod: model.GradingAuto,
		}
		if correct {
			qr.Score = 1
		}
		res.QuestionResults = append(res.QuestionResults, qr)
	}
	recompute(&res)
	return res
}

func applyReview(res model.GradingResult, req model.ReviewRequest, now time.Time) model.GradingResult {
	for i := range res.QuestionResults {
		qr := &res.QuestionResults[i]
		o, ok := req.QuestionResults[qr.QuestionID]
		if !ok {
			continue
		}
		if o.Score != nil {
			qr.Score = *o.Score
		}
		if o.IsCorrect != nil {
			qr.IsCorrect = *o.IsCorrect
			if o.Score == nil {
				qr.Score = 0
				if qr.IsCorrect {
					qr.Score = qr.MaxScore
				}
			}
		}
		if o.Feedback != nil {
			qr.Feedback = *o.Feedback
		}
		qr.GradingMethod = model.GradingManual
	}
	recompute(&res)
	res.IsReviewed = true
	res.ReviewedBy = req.ReviewedBy
	res.ReviewedAt = &now
	return res
}

func recompute(res *model.GradingResult) {
	res.TotalScore, res.MaxScore = 0, 0
	for _, qr := range res.QuestionResults {
		res.TotalScore += qr.Score
		res.MaxScore += qr.MaxScore
	}
	res.Percentage = 0
	if res.MaxScore > 0 {
		res.Percentage = res.TotalScore / res.MaxScore * 100
	}
}
