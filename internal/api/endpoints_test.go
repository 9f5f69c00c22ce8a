package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/pavelanni/worksheet/internal/fakeapi"
	"github.com/pavelanni/worksheet/internal/model"
)

func createTestWorksheet(t *testing.T, c *Client) model.Worksheet {
	t.Helper()
	ws, err := c.CreateWorksheet(context.Background(), model.GenerationRequest{
		Selection: model.Selection{
			Subjects:     []model.Subject{model.SubjectReading},
			ReadingTypes: []string{"main_idea"},
		},
		GenerationOptions: model.GenerationOptions{TotalQuestions: 3},
	})
	if err != nil {
		t.Fatalf("CreateWorksheet: %v", err)
	}
	return ws
}

func TestWorksheetEndpoints(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	cs, err := c.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cs.ReadingTypes) == 0 {
		t.Fatal("expected reading types")
	}

	opts, err := c.QuestionOptions(ctx, model.GenerationRequest{
		Selection:         model.Selection{Subjects: []model.Subject{model.SubjectReading, model.SubjectGrammar}},
		GenerationOptions: model.GenerationOptions{TotalQuestions: 5},
	})
	if err != nil {
		t.Fatalf("QuestionOptions: %v", err)
	}
	if opts.SubjectDistribution[model.SubjectReading] != 3 || opts.SubjectDistribution[model.SubjectGrammar] != 2 {
		t.Errorf("unexpected distribution: %v", opts.SubjectDistribution)
	}

	ws := createTestWorksheet(t, c)
	if ws.ID == 0 || len(ws.Questions) != 3 {
		t.Fatalf("unexpected worksheet: %+v", ws)
	}

	list, err := c.ListWorksheets(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("ListWorksheets: %v", err)
	}
	if len(list) != 1 || list[0].ID != ws.ID {
		t.Errorf("unexpected list: %+v", list)
	}

	solve, err := c.GetWorksheetForSolving(ctx, ws.ID)
	if err != nil {
		t.Fatalf("GetWorksheetForSolving: %v", err)
	}
	for _, q := range solve.Questions {
		if q.CorrectAnswer != "" {
			t.Errorf("solve view leaked answer for %s", q.ID)
		}
	}

	edit, err := c.GetWorksheetForEditing(ctx, ws.ID)
	if err != nil {
		t.Fatalf("GetWorksheetForEditing: %v", err)
	}
	if edit.Questions[0].CorrectAnswer != fakeapi.DefaultAnswer {
		t.Errorf("edit view missing answer: %+v", edit.Questions[0])
	}

	if _, err := c.GetWorksheet(ctx, 999); StatusCode(err) != http.StatusNotFound {
		t.Errorf("GetWorksheet(999) err = %v, want 404", err)
	}
}

func TestEditEndpoints(t *testing.T) {
	c, backend := newTestClient(t)
	ctx := context.Background()
	ws := createTestWorksheet(t, c)

	q, err := c.UpdateQuestion(ctx, ws.ID, "q1", model.QuestionUpdate{Text: "Which is the main idea?"})
	if err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	if q.Text != "Which is the main idea?" {
		t.Errorf("UpdateQuestion returned %+v", q)
	}

	if err := c.UpdateAnswer(ctx, ws.ID, "q1", model.AnswerUpdate{CorrectAnswer: "C", Explanation: "see line 2"}); err != nil {
		t.Fatalf("UpdateAnswer: %v", err)
	}
	if err := c.UpdatePassage(ctx, ws.ID, "p1", model.ContentUpdate{Content: "new passage"}); err != nil {
		t.Fatalf("UpdatePassage: %v", err)
	}
	if err := c.UpdateExample(ctx, ws.ID, "e1", model.ContentUpdate{Content: "x"}); StatusCode(err) != http.StatusNotFound {
		t.Errorf("UpdateExample on missing example: %v", err)
	}

	pc, err := c.PassageConnections(ctx, ws.ID, "p1")
	if err != nil {
		t.Fatalf("PassageConnections: %v", err)
	}
	if len(pc.QuestionIDs) != 3 {
		t.Errorf("expected 3 connected questions, got %v", pc.QuestionIDs)
	}

	ai, err := c.AIEditQuestion(ctx, ws.ID, "q2", model.AIEditRequest{Instruction: "make it harder"})
	if err != nil {
		t.Fatalf("AIEditQuestion: %v", err)
	}
	if ai.Question.ID != "q2" {
		t.Errorf("AIEditQuestion returned %+v", ai.Question)
	}

	if err := c.DeleteQuestion(ctx, ws.ID, "q3"); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}

	stored, _ := backend.Worksheet(ws.ID)
	if len(stored.Questions) != 2 {
		t.Errorf("expected 2 questions after delete, got %d", len(stored.Questions))
	}
	if stored.Questions[0].CorrectAnswer != "C" || stored.Passages[0].Content != "new passage" {
		t.Errorf("edits not persisted: %+v", stored)
	}
}

func TestSubmitAndReviewEndpoints(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	ws := createTestWorksheet(t, c)

	res, err := c.SubmitAnswers(ctx, ws.ID, model.AnswerSubmission{
		StudentName: "Kim",
		Answers:     model.Answers{"q1": "B", "q2": "A"},
	})
	if err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if res.ID == 0 || res.TotalScore != 1 || res.MaxScore != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}

	score := 1.0
	err = c.SaveReview(ctx, res.ID, model.ReviewRequest{
		ReviewedBy:      "Ms. Park",
		QuestionResults: map[string]model.ReviewOverride{"q2": {Score: &score}},
	})
	if err != nil {
		t.Fatalf("SaveReview: %v", err)
	}

	got, err := c.GetGradingResult(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetGradingResult: %v", err)
	}
	if !got.IsReviewed || got.TotalScore != 2 {
		t.Errorf("review not applied: %+v", got)
	}

	list, err := c.ListGradingResults(ctx, ListOptions{WorksheetID: ws.ID})
	if err != nil {
		t.Fatalf("ListGradingResults: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 result, got %d", len(list))
	}
	list, err = c.ListGradingResults(ctx, ListOptions{WorksheetID: ws.ID + 1})
	if err != nil {
		t.Fatalf("ListGradingResults: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no results for other worksheet, got %d", len(list))
	}
}
