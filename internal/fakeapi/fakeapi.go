// Package fakeapi is an in-memory stand-in for the worksheet backend.
// Tests mount it in an httptest.Server to exercise the client end to end;
// the fake-backend command serves it for local demos.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pavelanni/worksheet/internal/model"
)

// DefaultAnswer is the correct answer of every generated multiple-choice question.
const DefaultAnswer = "B"

// Request records one request received by the server.
type Request struct {
	Method      string
	Path        string
	ContentType string
	RequestID   string
	Traceparent string
}

type failure struct {
	status int
	detail string
}

// Server holds the backend state.
type Server struct {
	mu         sync.Mutex
	categories model.CategorySet
	worksheets map[int64]model.Worksheet
	results    map[int64]model.GradingResult
	nextWSID   int64
	nextResID  int64
	failures   map[string]failure
	requests   []Request
}

// New creates a server preloaded with a small category set.
func New() *Server {
	return &Server{
		categories: DefaultCategories(),
		worksheets: make(map[int64]model.Worksheet),
		results:    make(map[int64]model.GradingResult),
		failures:   make(map[string]failure),
	}
}

// DefaultCategories returns the taxonomy served by GET /categories.
func DefaultCategories() model.CategorySet {
	return model.CategorySet{
		ReadingTypes: []model.Category{
			{Key: "main_idea", Name: "Main idea"},
			{Key: "detail", Name: "Detail"},
			{Key: "inference", Name: "Inference"},
		},
		GrammarCategories: []model.GrammarCategory{
			{Key: "tense", Name: "Tense", Topics: []model.Category{
				{Key: "present_perfect", Name: "Present perfect"},
				{Key: "past_simple", Name: "Past simple"},
			}},
			{Key: "clauses", Name: "Clauses", Topics: []model.Category{
				{Key: "relative", Name: "Relative clauses"},
			}},
		},
		VocabularyCategories: []model.Category{
			{Key: "synonyms", Name: "Synonyms"},
			{Key: "idioms", Name: "Idioms"},
		},
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.recordMiddleware)
	r.Use(s.failureMiddleware)
	s.Routes(r)
	return r
}

// Mount returns a router that serves the backend under basePath (e.g. "/api")
// with request logging and CORS for browser clients.
func (s *Server) Mount(basePath string) http.Handler {
	basePath = strings.TrimRight(basePath, "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "traceparent"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if basePath == "" {
		r.Mount("/", s.Handler())
	} else {
		r.Mount(basePath, http.StripPrefix(basePath, s.Handler()))
	}
	return r
}

// Routes registers all backend routes.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/categories", s.handleCategories)
	r.Post("/question-options", s.handleQuestionOptions)
	r.Post("/worksheets", s.handleCreateWorksheet)
	r.Get("/worksheets", s.handleListWorksheets)
	r.Post("/worksheets/upload", s.handleUpload)
	r.Get("/worksheets/{id}", s.handleGetWorksheet)
	r.Get("/worksheets/{id}/solve", s.handleSolveWorksheet)
	r.Get("/worksheets/{id}/edit", s.handleGetWorksheet)
	r.Post("/worksheets/{id}/submit", s.handleSubmit)
	r.Put("/worksheets/{id}/questions/{qid}", s.handleUpdateQuestion)
	r.Delete("/worksheets/{id}/questions/{qid}", s.handleDeleteQuestion)
	r.Put("/worksheets/{id}/questions/{qid}/answer", s.handleUpdateAnswer)
	r.Post("/worksheets/{id}/questions/{qid}/ai-edit", s.handleAIEdit)
	r.Put("/worksheets/{id}/passages/{pid}", s.handleUpdatePassage)
	r.Get("/worksheets/{id}/passages/{pid}/connections", s.handleConnections)
	r.Put("/worksheets/{id}/examples/{eid}", s.handleUpdateExample)
	r.Get("/grading-results", s.handleListResults)
	r.Get("/grading-results/{id}", s.handleGetResult)
	r.Put("/grading-results/{id}/review", s.handleReview)
}

// FailNext makes the next request matching method and path fail with status.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, detail: "injected failure"}
}

// SetNextIDs makes the next created worksheet and grading result use the
// given ids. Zero leaves a counter unchanged.
func (s *Server) SetNextIDs(worksheetID, resultID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if worksheetID > 0 {
		s.nextWSID = worksheetID - 1
	}
	if resultID > 0 {
		s.nextResID = resultID - 1
	}
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Worksheet returns the stored worksheet, answers included.
func (s *Server) Worksheet(id int64) (model.Worksheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.worksheets[id]
	return w.Clone(), ok
}

// Result returns the stored grading result.
func (s *Server) Result(id int64) (model.GradingResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[id]
	return r.Clone(), ok
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-ID"),
			Traceparent: r.Header.Get("traceparent"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		f, ok := s.failures[key]
		if ok {
			delete(s.failures, key)
		}
		s.mu.Unlock()
		if ok {
			writeError(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthStatus{Status: "ok", Message: "worksheet backend"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cs := s.categories.Clone()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) handleQuestionOptions(w http.ResponseWriter, r *http.Request) {
	var req model.GenerationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Selection.Empty() {
		writeError(w, http.StatusBadRequest, "at least one subject is required")
		return
	}
	total := totalQuestions(req)
	opts := model.QuestionOptions{
		TotalQuestions:      total,
		SubjectDistribution: distribute(req.Subjects, total),
		FormatDistribution:  map[model.QuestionFormat]int{model.FormatMultipleChoice: total},
		EstimatedMinutes:    total * 2,
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleCreateWorksheet(w http.ResponseWriter, r *http.Request) {
	var req model.GenerationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Selection.Empty() {
		writeError(w, http.StatusBadRequest, "at least one subject is required")
		return
	}
	if err := req.Selection.Validate(s.categories); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.nextWSID++
	ws := generate(s.nextWSID, req, time.Now())
	s.worksheets[ws.ID] = ws
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, ws)
}

func (s *Server) handleListWorksheets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]model.Worksheet, 0, len(s.worksheets))
	for id := int64(1); id <= s.nextWSID; id++ {
		ws, ok := s.worksheets[id]
		if !ok {
			continue
		}
		ws = ws.Clone()
		ws.Questions = nil
		ws.Passages = nil
		ws.Examples = nil
		out = append(out, ws)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookupWorksheet(w http.ResponseWriter, r *http.Request) (model.Worksheet, bool) {
	id, ok := idParam(w, r)
	if !ok {
		return model.Worksheet{}, false
	}
	s.mu.Lock()
	ws, found := s.worksheets[id]
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("worksheet %d not found", id))
		return model.Worksheet{}, false
	}
	return ws.Clone(), true
}

func (s *Server) handleGetWorksheet(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupWorksheet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleSolveWorksheet(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupWorksheet(w, r)
	if !ok {
		return
	}
	for i := range ws.Questions {
		ws.Questions[i].CorrectAnswer = ""
		ws.Questions[i].Explanation = ""
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupWorksheet(w, r)
	if !ok {
		return
	}
	var sub model.AnswerSubmission
	if !decode(w, r, &sub) {
		return
	}

	res := grade(ws, sub)
	now := time.Now()
	res.CreatedAt = &now

	s.mu.Lock()
	s.nextResID++
	res.ID = s.nextResID
	s.results[res.ID] = res
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	var filter int64
	if v := r.URL.Query().Get("worksheet_id"); v != "" {
		filter, _ = strconv.ParseInt(v, 10, 64)
	}
	s.mu.Lock()
	out := make([]model.GradingResult, 0, len(s.results))
	for id := int64(1); id <= s.nextResID; id++ {
		res, ok := s.results[id]
		if !ok || (filter != 0 && res.WorksheetID != filter) {
			continue
		}
		out = append(out, res.Clone())
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	res, found := s.Result(id)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("grading result %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req model.ReviewRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, found := s.results[id]
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("grading result %d not found", id))
		return
	}
	res = applyReview(res.Clone(), req, time.Now())
	s.results[id] = res
	writeJSON(w, http.StatusOK, map[string]any{"message": "review saved", "id": id})
}

// mutateWorksheet runs fn on the stored worksheet under the lock and persists the result.
func (s *Server) mutateWorksheet(w http.ResponseWriter, r *http.Request, fn func(ws *model.Worksheet) (any, int, string)) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	ws, found := s.worksheets[id]
	if !found {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, fmt.Sprintf("worksheet %d not found", id))
		return
	}
	ws = ws.Clone()
	body, status, detail := fn(&ws)
	if status < 300 {
		s.worksheets[id] = ws
	}
	s.mu.Unlock()

	if status >= 300 {
		writeError(w, status, detail)
		return
	}
	writeJSON(w, status, body)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var upd model.QuestionUpdate
	if !decode(w, r, &upd) {
		return
	}
	qid := chi.URLParam(r, "qid")
	s.mutateWorksheet(w, r, func(ws *model.Worksheet) (any, int, string) {
		i := ws.QuestionIndex(qid)
		if i < 0 {
			return nil, http.StatusNotFound, "question not found"
		}
		q := &ws.Questions[i]
		if upd.Text != "" {
			q.Text = upd.Text
		}
		if upd.Format != "" {
			q.Format = upd.Format
		}
		if upd.Choices != nil {
			q.Choices = upd.Choices
		}
		return *q, http.StatusOK, ""
	})
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	qid := chi.URLParam(r, "qid")
	s.mutateWorksheet(w, r, func(ws *model.Worksheet) (any, int, string) {
		i := ws.QuestionIndex(qid)
		if i < 0 {
			return nil, http.StatusNotFound, "question not found"
		}
		ws.Questions = append(ws.Questions[:i], ws.Questions[i+1:]...)
		for j := range ws.Questions {
			ws.Questions[j].Number = j + 1
		}
		ws.TotalQuestions = len(ws.Questions)
		return map[string]string{"message": "question deleted"}, http.StatusOK, ""
	})
}

func (s *Server) handleUpdateAnswer(w http.ResponseWriter, r *http.Request) {
	var upd model.AnswerUpdate
	if !decode(w, r, &upd) {
		return
	}
	qid := chi.URLParam(r, "qid")
	s.mutateWorksheet(w, r, func(ws *model.Worksheet) (any, int, string) {
		i := ws.QuestionIndex(qid)
		if i < 0 {
			return nil, http.StatusNotFound, "question not found"
		}
		ws.Questions[i].CorrectAnswer = upd.CorrectAnswer
		ws.Questions[i].Explanation = upd.Explanation
		return map[string]string{"message": "answer updated"}, http.StatusOK, ""
	})
}

func (s *Server) handleAIEdit(w http.ResponseWriter, r *http.Request) {
	var req model.AIEditRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		writeError(w, http.StatusBadRequest, "instruction is required")
		return
	}
	qid := chi.URLParam(r, "qid")
	s.mutateWorksheet(w, r, func(ws *model.Worksheet) (any, int, string) {
		i := ws.QuestionIndex(qid)
		if i < 0 {
			return nil, http.StatusNotFound, "question not found"
		}
		ws.Questions[i].Text += " (revised)"
		return model.AIEditResponse{Question: ws.Questions[i], Message: "edited"}, http.StatusOK, ""
	})
}

func (s *Server) handleUpdatePassage(w http.ResponseWriter, r *http.Request) {
	var upd model.ContentUpdate
	if !decode(w, r, &upd) {
		return
	}
	pid := chi.URLParam(r, "pid")
	s.mutateWorksheet(w, r, func(ws *model.Worksheet) (any, int, string) {
		for i := range ws.Passages {
			if ws.Passages[i].ID == pid {
				ws.Passages[i].Content = upd.Content
				return map[string]string{"message": "passage updated"}, http.StatusOK, ""
			}
		}
		return nil, http.StatusNotFound, "passage not found"
	})
}

func (s *Server) handleUpdateExample(w http.ResponseWriter, r *http.Request) {
	var upd model.ContentUpdate
	if !decode(w, r, &upd) {
		return
	}
	eid := chi.URLParam(r, "eid")
	s.mutateWorksheet(w, r, func(ws *model.Worksheet) (any, int, string) {
		for i := range ws.Examples {
			if ws.Examples[i].ID == eid {
				ws.Examples[i].Content = upd.Content
				return map[string]string{"message": "example updated"}, http.StatusOK, ""
			}
		}
		return nil, http.StatusNotFound, "example not found"
	})
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupWorksheet(w, r)
	if !ok {
		return
	}
	pid := chi.URLParam(r, "pid")
	pc := model.PassageConnections{PassageID: pid, QuestionIDs: []string{}}
	for _, q := range ws.Questions {
		if q.PassageID == pid {
			pc.QuestionIDs = append(pc.QuestionIDs, q.ID)
		}
	}
	writeJSON(w, http.StatusOK, pc)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	if _, err := io.Copy(io.Discard, file); err != nil {
		writeError(w, http.StatusBadRequest, "read file")
		return
	}

	s.mu.Lock()
	s.nextWSID++
	now := time.Now()
	ws := model.Worksheet{ID: s.nextWSID, Title: header.Filename, CreatedAt: &now, Questions: []model.Question{}}
	s.worksheets[ws.ID] = ws
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, model.UploadResult{WorksheetID: ws.ID, Message: "uploaded"})
}
