package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pavelanni/worksheet/internal/api"
	"github.com/pavelanni/worksheet/internal/fakeapi"
	"github.com/pavelanni/worksheet/internal/instructions"
	"github.com/pavelanni/worksheet/internal/model"
	"github.com/pavelanni/worksheet/internal/store"
)

type recordingView struct {
	mu       sync.Mutex
	notes    []string
	errs     []error
	saving   []bool
	ticks    int
	results  []model.GradingResult
	sheets   []model.Worksheet
	previews []model.QuestionOptions
}

func (v *recordingView) Notify(msgID string, _ map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notes = append(v.notes, msgID)
}

func (v *recordingView) Error(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errs = append(v.errs, err)
}

func (v *recordingView) Categories(model.CategorySet, model.Selection) {}

func (v *recordingView) Options(opts model.QuestionOptions) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.previews = append(v.previews, opts)
}

func (v *recordingView) Worksheet(w model.Worksheet, _ model.AnswerKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sheets = append(v.sheets, w)
}

func (v *recordingView) Result(r model.GradingResult) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results = append(v.results, r)
}

func (v *recordingView) Tick(time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ticks++
}

func (v *recordingView) SetSaving(saving bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.saving = append(v.saving, saving)
}

func (v *recordingView) tickCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ticks
}

func (v *recordingView) noted(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, n := range v.notes {
		if n == id {
			return true
		}
	}
	return false
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	ctl     *Controller
	view    *recordingView
	backend *fakeapi.Server
	client  *api.Client
	clock   *fakeClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	backend := fakeapi.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	f := &fixture{
		view:    &recordingView{},
		backend: backend,
		client:  api.NewClient(srv.URL),
		clock:   &fakeClock{t: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)},
	}
	opts = append([]Option{WithClock(f.clock.Now), WithTickInterval(time.Hour)}, opts...)
	f.ctl = New(f.client, f.view, opts...)
	t.Cleanup(f.ctl.Close)
	return f
}

func newTestCache(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func (f *fixture) selectReading(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.ctl.LoadCategories(ctx); err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if _, err := f.ctl.Select(model.KindSubject, string(model.SubjectReading), true); err != nil {
		t.Fatalf("Select subject: %v", err)
	}
	if _, err := f.ctl.Select(model.KindReadingType, "main_idea", true); err != nil {
		t.Fatalf("Select reading type: %v", err)
	}
}

func TestGenerateSolveSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.SetNextIDs(7, 0)
	f.selectReading(t)

	ws, err := f.ctl.GenerateWorksheet(ctx)
	if err != nil {
		t.Fatalf("GenerateWorksheet: %v", err)
	}
	if got := f.ctl.State().Snapshot().Worksheet.ID; got != 7 || ws.ID != 7 {
		t.Fatalf("current worksheet id = %d, want 7", got)
	}

	if _, err := f.ctl.StartSolving(ctx, 7); err != nil {
		t.Fatalf("StartSolving: %v", err)
	}
	if err := f.ctl.SetAnswer("q1", "B"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	f.clock.Advance(90 * time.Second)

	res, err := f.ctl.SubmitAnswers(ctx, "Kim", "3-2")
	if err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if res.Percentage != 20 {
		t.Errorf("percentage = %v, want 20", res.Percentage)
	}
	if res.CompletionTime != 90 {
		t.Errorf("completion time = %d, want 90", res.CompletionTime)
	}

	snap := f.ctl.State().Snapshot()
	if snap.Review != Computed(res.ID) {
		t.Errorf("review = %v, want %v", snap.Review, Computed(res.ID))
	}
	if snap.ResultID != res.ID || snap.Result.ID != res.ID {
		t.Errorf("current result = %d/%d, want %d", snap.ResultID, snap.Result.ID, res.ID)
	}
	if snap.SolvingWorksheet.Loaded() || len(snap.Answers) != 0 {
		t.Error("solving state not cleared after submit")
	}
}

func TestGenerateReplacesCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectReading(t)

	first, err := f.ctl.GenerateWorksheet(ctx)
	if err != nil {
		t.Fatalf("GenerateWorksheet: %v", err)
	}
	if _, err := f.ctl.StartEditing(ctx); err != nil {
		t.Fatalf("StartEditing: %v", err)
	}
	second, err := f.ctl.GenerateWorksheet(ctx)
	if err != nil {
		t.Fatalf("GenerateWorksheet: %v", err)
	}
	snap := f.ctl.State().Snapshot()
	if snap.Worksheet.ID != second.ID || second.ID == first.ID {
		t.Errorf("current worksheet = %d, want %d", snap.Worksheet.ID, second.ID)
	}
	if snap.Editing || snap.EditingWorksheet.Loaded() {
		t.Error("editing state survived a new generation")
	}
}

func TestReviewMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.SetNextIDs(0, 42)
	f.selectReading(t)
	ws, err := f.ctl.GenerateWorksheet(ctx)
	if err != nil {
		t.Fatalf("GenerateWorksheet: %v", err)
	}
	if _, err := f.ctl.StartSolving(ctx, ws.ID); err != nil {
		t.Fatalf("StartSolving: %v", err)
	}
	if _, err := f.ctl.SubmitAnswers(ctx, "Lee", ""); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if got := f.ctl.State().Snapshot().Review; got != Computed(42) {
		t.Fatalf("review = %v, want computed(42)", got)
	}

	if err := f.ctl.SetOverride("q1", model.ReviewOverride{Score: Ptr(1.0), Feedback: Ptr("partial credit")}); err != nil {
		t.Fatalf("SetOverride: %v", err)
	}

	// A failed save stays Computed and keeps the draft.
	f.backend.FailNext(http.MethodPut, "/grading-results/42/review", http.StatusInternalServerError)
	if _, err := f.ctl.SaveReview(ctx, "Ms. Park", ""); api.StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("SaveReview err = %v, want 500 failure", err)
	}
	snap := f.ctl.State().Snapshot()
	if snap.Review != Computed(42) {
		t.Errorf("after failed save review = %v, want computed(42)", snap.Review)
	}
	if len(snap.ReviewDraft) != 1 {
		t.Errorf("draft lost after failed save: %v", snap.ReviewDraft)
	}

	// A successful save re-fetches and moves to Reviewed.
	res, err := f.ctl.SaveReview(ctx, "Ms. Park", "ok")
	if err != nil {
		t.Fatalf("SaveReview: %v", err)
	}
	if !res.IsReviewed || res.TotalScore != 1 {
		t.Errorf("re-fetched result = %+v", res)
	}
	if got := f.ctl.State().Snapshot().Review; got != Reviewed(42) {
		t.Errorf("review = %v, want reviewed(42)", got)
	}

	// The save control was disabled and re-enabled around each attempt.
	want := []bool{true, false, true, false}
	if len(f.view.saving) != len(want) {
		t.Fatalf("saving events = %v, want %v", f.view.saving, want)
	}
	for i := range want {
		if f.view.saving[i] != want[i] {
			t.Errorf("saving events = %v, want %v", f.view.saving, want)
			break
		}
	}

	// Reloading the same id never resets Reviewed.
	if _, err := f.ctl.LoadResult(ctx, 42); err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if got := f.ctl.State().Snapshot().Review; got != Reviewed(42) {
		t.Errorf("after reload review = %v, want reviewed(42)", got)
	}

	// Saving again is idempotent.
	if _, err := f.ctl.SaveReview(ctx, "Ms. Park", ""); err != nil {
		t.Fatalf("second SaveReview: %v", err)
	}
	if got := f.ctl.State().Snapshot().Review; got != Reviewed(42) {
		t.Errorf("after second save review = %v", got)
	}

	// A different result restarts the machine.
	if _, err := f.ctl.StartSolving(ctx, ws.ID); err != nil {
		t.Fatalf("StartSolving: %v", err)
	}
	res2, err := f.ctl.SubmitAnswers(ctx, "Park", "")
	if err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	snap = f.ctl.State().Snapshot()
	if snap.Review != Computed(res2.ID) || res2.ID != 43 {
		t.Errorf("review = %v, want computed(43)", snap.Review)
	}
	if len(snap.ReviewDraft) != 0 {
		t.Errorf("draft carried over to a different result: %v", snap.ReviewDraft)
	}
}

func TestSaveReviewRefreshFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.SetNextIDs(0, 5)
	f.selectReading(t)
	ws, _ := f.ctl.GenerateWorksheet(ctx)
	f.ctl.StartSolving(ctx, ws.ID)
	if _, err := f.ctl.SubmitAnswers(ctx, "Choi", ""); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}

	f.backend.FailNext(http.MethodGet, "/grading-results/5", http.StatusBadGateway)
	if _, err := f.ctl.SaveReview(ctx, "Ms. Park", ""); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := f.ctl.State().Snapshot().Review; got != Reviewed(5) {
		t.Errorf("review = %v, want reviewed(5) once the save succeeded", got)
	}
}

func TestLoadResultAlreadyReviewed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectReading(t)
	ws, _ := f.ctl.GenerateWorksheet(ctx)
	f.ctl.StartSolving(ctx, ws.ID)
	res, err := f.ctl.SubmitAnswers(ctx, "Han", "")
	if err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if err := f.client.SaveReview(ctx, res.ID, model.ReviewRequest{ReviewedBy: "other"}); err != nil {
		t.Fatalf("SaveReview: %v", err)
	}

	other := New(f.client, &recordingView{})
	defer other.Close()
	if _, err := other.LoadResult(ctx, res.ID); err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if got := other.State().Snapshot().Review; got != Reviewed(res.ID) {
		t.Errorf("review = %v, want reviewed(%d)", got, res.ID)
	}
}

func TestReviewWithoutResult(t *testing.T) {
	f := newFixture(t)
	if _, err := f.ctl.SaveReview(context.Background(), "Ms. Park", ""); !errors.Is(err, ErrNoResult) {
		t.Errorf("SaveReview err = %v, want ErrNoResult", err)
	}
	if err := f.ctl.SetOverride("q1", model.ReviewOverride{}); !errors.Is(err, ErrNoResult) {
		t.Errorf("SetOverride err = %v, want ErrNoResult", err)
	}
	if len(f.view.saving) != 0 {
		t.Errorf("save control toggled without a result: %v", f.view.saving)
	}
}

func TestSelect(t *testing.T) {
	f := newFixture(t)

	if _, err := f.ctl.Select(model.KindSubject, "reading", true); !errors.Is(err, ErrNoCategories) {
		t.Errorf("Select before load err = %v, want ErrNoCategories", err)
	}

	f.selectReading(t)
	before := f.ctl.State().Snapshot().Selection

	tests := []struct {
		name string
		kind model.SelectionKind
		key  string
	}{
		{"topic without grammar", model.KindGrammarTopic, "present_perfect"},
		{"unknown reading type", model.KindReadingType, "poetry"},
		{"unknown subject", model.KindSubject, "math"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ctl.Select(tt.kind, tt.key, true)
			if !errors.Is(err, model.ErrInvalidSelection) {
				t.Errorf("err = %v, want ErrInvalidSelection", err)
			}
			after := f.ctl.State().Snapshot().Selection
			if len(after.Subjects) != len(before.Subjects) || len(after.ReadingTypes) != len(before.ReadingTypes) ||
				len(after.GrammarTopics) != 0 {
				t.Errorf("selection changed: %+v", after)
			}
		})
	}

	sel, err := f.ctl.Select(model.KindSubject, "reading", false)
	if err != nil {
		t.Fatalf("deselect: %v", err)
	}
	if len(sel.ReadingTypes) != 0 {
		t.Errorf("reading types kept after deselecting reading: %v", sel.ReadingTypes)
	}
	if _, err := f.ctl.GenerateWorksheet(context.Background()); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("GenerateWorksheet err = %v, want ErrEmptySelection", err)
	}
}

func TestPreviewOptions(t *testing.T) {
	f := newFixture(t)
	f.selectReading(t)
	f.ctl.SetOptions(model.GenerationOptions{TotalQuestions: 8, Difficulty: model.DifficultyHard})

	opts, err := f.ctl.PreviewOptions(context.Background())
	if err != nil {
		t.Fatalf("PreviewOptions: %v", err)
	}
	if opts.TotalQuestions != 8 || opts.SubjectDistribution[model.SubjectReading] != 8 {
		t.Errorf("unexpected preview: %+v", opts)
	}
	if len(f.view.previews) != 1 {
		t.Error("preview not shown")
	}
}

func TestEditing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectReading(t)

	if _, err := f.ctl.StartEditing(ctx); !errors.Is(err, ErrNoWorksheet) {
		t.Fatalf("StartEditing without worksheet err = %v", err)
	}
	ws, err := f.ctl.GenerateWorksheet(ctx)
	if err != nil {
		t.Fatalf("GenerateWorksheet: %v", err)
	}
	if _, err := f.ctl.StartEditing(ctx); err != nil {
		t.Fatalf("StartEditing: %v", err)
	}

	if _, err := f.ctl.EditQuestion(ctx, "q1", model.QuestionUpdate{Text: "What is the main idea?"}); err != nil {
		t.Fatalf("EditQuestion: %v", err)
	}
	if err := f.ctl.EditAnswer(ctx, "q2", model.AnswerUpdate{CorrectAnswer: "D", Explanation: "line 4"}); err != nil {
		t.Fatalf("EditAnswer: %v", err)
	}
	if err := f.ctl.EditPassage(ctx, "p1", "A new passage."); err != nil {
		t.Fatalf("EditPassage: %v", err)
	}
	if err := f.ctl.EditExample(ctx, "e9", "x"); api.StatusCode(err) != http.StatusNotFound {
		t.Errorf("EditExample on missing example err = %v", err)
	}
	resp, err := f.ctl.AIEdit(ctx, "q3", instructions.Harder, "")
	if err != nil {
		t.Fatalf("AIEdit: %v", err)
	}
	if !strings.HasSuffix(resp.Question.Text, "(revised)") {
		t.Errorf("AIEdit question = %q", resp.Question.Text)
	}
	if _, err := f.ctl.AIEdit(ctx, "q99", instructions.Simplify, ""); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("AIEdit unknown question err = %v", err)
	}
	if err := f.ctl.DeleteQuestion(ctx, "q4"); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	pc, err := f.ctl.PassageConnections(ctx, "p1")
	if err != nil {
		t.Fatalf("PassageConnections: %v", err)
	}
	if len(pc.QuestionIDs) != 4 {
		t.Errorf("connections = %v", pc.QuestionIDs)
	}

	snap := f.ctl.State().Snapshot()
	ew := snap.EditingWorksheet
	if ew.Questions[0].Text != "What is the main idea?" {
		t.Errorf("local question not updated: %q", ew.Questions[0].Text)
	}
	if snap.AnswerKey["q2"].Answer != "D" {
		t.Errorf("answer key not updated: %+v", snap.AnswerKey["q2"])
	}
	if _, ok := snap.AnswerKey["q4"]; ok || len(ew.Questions) != 4 || ew.Questions[3].Number != 4 {
		t.Errorf("delete not applied locally: %+v", ew.Questions)
	}
	if ew.Passages[0].Content != "A new passage." {
		t.Errorf("passage not updated locally")
	}

	f.ctl.StopEditing()
	snap = f.ctl.State().Snapshot()
	if snap.Editing || snap.Worksheet.ID != ws.ID || len(snap.Worksheet.Questions) != 4 {
		t.Errorf("StopEditing did not publish the edited worksheet: %+v", snap.Worksheet)
	}

	stored, _ := f.backend.Worksheet(ws.ID)
	if stored.Questions[1].CorrectAnswer != "D" || len(stored.Questions) != 4 {
		t.Errorf("backend not updated: %+v", stored.Questions)
	}
}

func TestSetAnswerValidation(t *testing.T) {
	f := newFixture(t)
	if err := f.ctl.SetAnswer("q1", "B"); !errors.Is(err, ErrNotSolving) {
		t.Errorf("SetAnswer before solving err = %v", err)
	}
	if _, err := f.ctl.SubmitAnswers(context.Background(), "x", ""); !errors.Is(err, ErrNotSolving) {
		t.Errorf("SubmitAnswers before solving err = %v", err)
	}

	f.selectReading(t)
	ws, _ := f.ctl.GenerateWorksheet(context.Background())
	f.ctl.StartSolving(context.Background(), ws.ID)
	if err := f.ctl.SetAnswer("nope", "B"); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("SetAnswer unknown question err = %v", err)
	}
	f.ctl.SetAnswer("q1", "B")
	f.ctl.SetAnswer("q1", "")
	if n := len(f.ctl.State().Snapshot().Answers); n != 0 {
		t.Errorf("empty answer did not clear: %d answers", n)
	}
}

func TestSubmitFailureKeepsSolving(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectReading(t)
	ws, _ := f.ctl.GenerateWorksheet(ctx)
	f.ctl.StartSolving(ctx, ws.ID)
	f.ctl.SetAnswer("q1", "B")

	f.backend.FailNext(http.MethodPost, "/worksheets/1/submit", http.StatusServiceUnavailable)
	if _, err := f.ctl.SubmitAnswers(ctx, "Kim", ""); err == nil {
		t.Fatal("expected submit failure")
	}
	snap := f.ctl.State().Snapshot()
	if !snap.SolvingWorksheet.Loaded() || snap.Answers["q1"] != "B" {
		t.Error("solving state lost after failed submit")
	}
	if snap.Review.Phase != ReviewNone {
		t.Errorf("review = %v, want none", snap.Review)
	}
	f.clock.Advance(5 * time.Second)
	if f.ctl.Elapsed() != 5*time.Second {
		t.Errorf("clock stopped after failed submit: %v", f.ctl.Elapsed())
	}
	if len(f.view.errs) != 1 {
		t.Errorf("errors shown = %d, want 1", len(f.view.errs))
	}
}

func TestSolveClockTicks(t *testing.T) {
	f := newFixture(t, WithTickInterval(2*time.Millisecond))
	ctx := context.Background()
	f.selectReading(t)
	ws, _ := f.ctl.GenerateWorksheet(ctx)
	f.ctl.StartSolving(ctx, ws.ID)

	deadline := time.Now().Add(2 * time.Second)
	for f.view.tickCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("solve clock never ticked")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := f.ctl.SubmitAnswers(ctx, "Kim", ""); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	n := f.view.tickCount()
	time.Sleep(20 * time.Millisecond)
	if got := f.view.tickCount(); got != n {
		t.Errorf("clock kept ticking after submit: %d -> %d", n, got)
	}
}

func TestAnswerDraftRestored(t *testing.T) {
	cache := newTestCache(t)
	f := newFixture(t, WithCache(cache), WithDraftDelay(time.Hour))
	ctx := context.Background()
	f.selectReading(t)
	ws, _ := f.ctl.GenerateWorksheet(ctx)
	f.ctl.StartSolving(ctx, ws.ID)
	f.ctl.SetAnswer("q1", "B")
	f.ctl.SetAnswer("q2", "C")
	f.ctl.Close()

	var draft model.Answers
	if !cache.Load(DraftKey(ws.ID), &draft) || draft["q2"] != "C" {
		t.Fatalf("draft not flushed on Close: %v", draft)
	}

	view := &recordingView{}
	next := New(f.client, view, WithCache(cache))
	defer next.Close()
	if _, err := next.StartSolving(ctx, ws.ID); err != nil {
		t.Fatalf("StartSolving: %v", err)
	}
	if got := next.State().Snapshot().Answers; got["q1"] != "B" || got["q2"] != "C" {
		t.Errorf("restored answers = %v", got)
	}
	if !view.noted("DraftRestored") {
		t.Error("draft restore not announced")
	}

	if _, err := next.SubmitAnswers(ctx, "Kim", ""); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if cache.Load(DraftKey(ws.ID), &draft) {
		t.Error("draft kept after submit")
	}
}

func TestCategoriesFromCache(t *testing.T) {
	cache := newTestCache(t)
	f := newFixture(t, WithCache(cache))
	f.selectReading(t)

	f.backend.FailNext(http.MethodGet, "/categories", http.StatusServiceUnavailable)
	view := &recordingView{}
	next := New(f.client, view, WithCache(cache))
	defer next.Close()

	cs, err := next.LoadCategories(context.Background())
	if err != nil {
		t.Fatalf("LoadCategories with cache: %v", err)
	}
	if cs.Empty() {
		t.Error("cached categories empty")
	}
	sel := next.State().Snapshot().Selection
	if !sel.HasSubject(model.SubjectReading) || len(sel.ReadingTypes) != 1 {
		t.Errorf("cached selection not restored: %+v", sel)
	}

	f.backend.FailNext(http.MethodGet, "/categories", http.StatusServiceUnavailable)
	bare := New(f.client, &recordingView{})
	defer bare.Close()
	if _, err := bare.LoadCategories(context.Background()); api.StatusCode(err) != http.StatusServiceUnavailable {
		t.Errorf("LoadCategories without cache err = %v", err)
	}
}

func TestUpload(t *testing.T) {
	f := newFixture(t)
	ws, err := f.ctl.Upload(context.Background(), "midterm.docx", strings.NewReader("doc"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ws.Title != "midterm.docx" || f.ctl.State().Snapshot().Worksheet.ID != ws.ID {
		t.Errorf("uploaded worksheet not current: %+v", ws)
	}
}
