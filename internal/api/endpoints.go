package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pavelanni/worksheet/internal/model"
)

// API is the set of backend operations used by the session controller.
type API interface {
	Categories(ctx context.Context) (model.CategorySet, error)
	QuestionOptions(ctx context.Context, req model.GenerationRequest) (model.QuestionOptions, error)
	CreateWorksheet(ctx context.Context, req model.GenerationRequest) (model.Worksheet, error)
	ListWorksheets(ctx context.Context, opts ListOptions) ([]model.Worksheet, error)
	GetWorksheet(ctx context.Context, id int64) (model.Worksheet, error)
	GetWorksheetForSolving(ctx context.Context, id int64) (model.Worksheet, error)
	GetWorksheetForEditing(ctx context.Context, id int64) (model.Worksheet, error)
	SubmitAnswers(ctx context.Context, worksheetID int64, sub model.AnswerSubmission) (model.GradingResult, error)
	ListGradingResults(ctx context.Context, opts ListOptions) ([]model.GradingResult, error)
	GetGradingResult(ctx context.Context, id int64) (model.GradingResult, error)
	SaveReview(ctx context.Context, id int64, req model.ReviewRequest) error
	UpdateQuestion(ctx context.Context, worksheetID int64, questionID string, upd model.QuestionUpdate) (model.Question, error)
	DeleteQuestion(ctx context.Context, worksheetID int64, questionID string) error
	UpdateAnswer(ctx context.Context, worksheetID int64, questionID string, upd model.AnswerUpdate) error
	UpdatePassage(ctx context.Context, worksheetID int64, passageID string, upd model.ContentUpdate) error
	UpdateExample(ctx context.Context, worksheetID int64, exampleID string, upd model.ContentUpdate) error
	AIEditQuestion(ctx context.Context, worksheetID int64, questionID string, req model.AIEditRequest) (model.AIEditResponse, error)
	PassageConnections(ctx context.Context, worksheetID int64, passageID string) (model.PassageConnections, error)
	UploadWorksheetFile(ctx context.Context, name string, r io.Reader) (model.UploadResult, error)
	HealthCheck(ctx context.Context) model.HealthStatus
}

var _ API = (*Client)(nil)

// ListOptions contains paging and filter options for list endpoints.
type ListOptions struct {
	WorksheetID int64 // grading results only
	Skip        int
	Limit       int
}

func (o ListOptions) query() string {
	v := url.Values{}
	if o.WorksheetID > 0 {
		v.Set("worksheet_id", strconv.FormatInt(o.WorksheetID, 10))
	}
	if o.Skip > 0 {
		v.Set("skip", strconv.Itoa(o.Skip))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func worksheetPath(id int64, parts ...string) string {
	p := fmt.Sprintf("/worksheets/%d", id)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// Categories loads the subject taxonomy.
func (c *Client) Categories(ctx context.Context) (model.CategorySet, error) {
	var cs model.CategorySet
	err := c.Call(ctx, http.MethodGet, "/categories", nil, &cs)
	return cs, err
}

// QuestionOptions previews how a generation request would be distributed.
func (c *Client) QuestionOptions(ctx context.Context, req model.GenerationRequest) (model.QuestionOptions, error) {
	var opts model.QuestionOptions
	err := c.Call(ctx, http.MethodPost, "/question-options", req, &opts)
	return opts, err
}

// CreateWorksheet generates and persists a new worksheet.
func (c *Client) CreateWorksheet(ctx context.Context, req model.GenerationRequest) (model.Worksheet, error) {
	var w model.Worksheet
	err := c.Call(ctx, http.MethodPost, "/worksheets", req, &w)
	return w, err
}

// ListWorksheets returns saved worksheets without their questions.
func (c *Client) ListWorksheets(ctx context.Context, opts ListOptions) ([]model.Worksheet, error) {
	var ws []model.Worksheet
	err := c.Call(ctx, http.MethodGet, "/worksheets"+opts.query(), nil, &ws)
	return ws, err
}

// GetWorksheet fetches one worksheet.
func (c *Client) GetWorksheet(ctx context.Context, id int64) (model.Worksheet, error) {
	var w model.Worksheet
	err := c.Call(ctx, http.MethodGet, worksheetPath(id), nil, &w)
	return w, err
}

// GetWorksheetForSolving fetches a worksheet without answers.
func (c *Client) GetWorksheetForSolving(ctx context.Context, id int64) (model.Worksheet, error) {
	var w model.Worksheet
	err := c.Call(ctx, http.MethodGet, worksheetPath(id, "solve"), nil, &w)
	return w, err
}

// GetWorksheetForEditing fetches a worksheet with answers and explanations.
func (c *Client) GetWorksheetForEditing(ctx context.Context, id int64) (model.Worksheet, error) {
	var w model.Worksheet
	err := c.Call(ctx, http.MethodGet, worksheetPath(id, "edit"), nil, &w)
	return w, err
}

// SubmitAnswers submits a student's answers and returns the computed grading result.
func (c *Client) SubmitAnswers(ctx context.Context, worksheetID int64, sub model.AnswerSubmission) (model.GradingResult, error) {
	var r model.GradingResult
	err := c.Call(ctx, http.MethodPost, worksheetPath(worksheetID, "submit"), sub, &r)
	return r, err
}

// ListGradingResults returns grading results, optionally for one worksheet.
func (c *Client) ListGradingResults(ctx context.Context, opts ListOptions) ([]model.GradingResult, error) {
	var rs []model.GradingResult
	err := c.Call(ctx, http.MethodGet, "/grading-results"+opts.query(), nil, &rs)
	return rs, err
}

// GetGradingResult fetches one grading result.
func (c *Client) GetGradingResult(ctx context.Context, id int64) (model.GradingResult, error) {
	var r model.GradingResult
	err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/grading-results/%d", id), nil, &r)
	return r, err
}

// SaveReview persists reviewer overrides and marks the result reviewed.
func (c *Client) SaveReview(ctx context.Context, id int64, req model.ReviewRequest) error {
	return c.Call(ctx, http.MethodPut, fmt.Sprintf("/grading-results/%d/review", id), req, nil)
}

// UpdateQuestion edits a question's text, format or choices.
func (c *Client) UpdateQuestion(ctx context.Context, worksheetID int64, questionID string, upd model.QuestionUpdate) (model.Question, error) {
	var q model.Question
	err := c.Call(ctx, http.MethodPut, worksheetPath(worksheetID, "questions", questionID), upd, &q)
	return q, err
}

// DeleteQuestion removes a question from a worksheet.
func (c *Client) DeleteQuestion(ctx context.Context, worksheetID int64, questionID string) error {
	return c.Call(ctx, http.MethodDelete, worksheetPath(worksheetID, "questions", questionID), nil, nil)
}

// UpdateAnswer edits a question's correct answer and explanation.
func (c *Client) UpdateAnswer(ctx context.Context, worksheetID int64, questionID string, upd model.AnswerUpdate) error {
	return c.Call(ctx, http.MethodPut, worksheetPath(worksheetID, "questions", questionID, "answer"), upd, nil)
}

// UpdatePassage edits a passage's content.
func (c *Client) UpdatePassage(ctx context.Context, worksheetID int64, passageID string, upd model.ContentUpdate) error {
	return c.Call(ctx, http.MethodPut, worksheetPath(worksheetID, "passages", passageID), upd, nil)
}

// UpdateExample edits an example's content.
func (c *Client) UpdateExample(ctx context.Context, worksheetID int64, exampleID string, upd model.ContentUpdate) error {
	return c.Call(ctx, http.MethodPut, worksheetPath(worksheetID, "examples", exampleID), upd, nil)
}

// AIEditQuestion asks the backend to rewrite a question following an instruction.
func (c *Client) AIEditQuestion(ctx context.Context, worksheetID int64, questionID string, req model.AIEditRequest) (model.AIEditResponse, error) {
	var resp model.AIEditResponse
	err := c.Call(ctx, http.MethodPost, worksheetPath(worksheetID, "questions", questionID, "ai-edit"), req, &resp)
	return resp, err
}

// PassageConnections lists the questions that reference a passage.
func (c *Client) PassageConnections(ctx context.Context, worksheetID int64, passageID string) (model.PassageConnections, error) {
	var pc model.PassageConnections
	err := c.Call(ctx, http.MethodGet, worksheetPath(worksheetID, "passages", passageID, "connections"), nil, &pc)
	return pc, err
}

// UploadWorksheetFile uploads a worksheet document as multipart form data.
func (c *Client) UploadWorksheetFile(ctx context.Context, name string, r io.Reader) (model.UploadResult, error) {
	var res model.UploadResult
	mp, err := NewMultipart(nil, "file", name, r)
	if err != nil {
		return res, fmt.Errorf("build upload: %w", err)
	}
	err = c.Upload(ctx, "/worksheets/upload", mp, &res)
	return res, err
}
