package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/pavelanni/worksheet/internal/api"
	"github.com/pavelanni/worksheet/internal/instructions"
	"github.com/pavelanni/worksheet/internal/model"
	"github.com/pavelanni/worksheet/internal/schedule"
)

var (
	ErrNoCategories    = errors.New("categories not loaded")
	ErrEmptySelection  = errors.New("no subject selected")
	ErrNoWorksheet     = errors.New("no current worksheet")
	ErrNotSolving      = errors.New("no worksheet is being solved")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrNoResult        = errors.New("no current grading result")
)

// Cache keys.
const (
	KeyCategories  = "categories"
	KeySelection   = "selection"
	draftKeyPrefix = "draft:"
)

// DraftKey is the cache key of in-progress answers for a worksheet.
func DraftKey(worksheetID int64) string {
	return draftKeyPrefix + strconv.FormatInt(worksheetID, 10)
}

// View presents session changes to the user.
type View interface {
	Notify(msgID string, data map[string]any)
	Error(err error)
	Categories(cs model.CategorySet, sel model.Selection)
	Options(opts model.QuestionOptions)
	Worksheet(w model.Worksheet, key model.AnswerKey)
	Result(r model.GradingResult)
	Tick(elapsed time.Duration)
	SetSaving(saving bool)
}

// Cache is a best-effort key-value store for data that should survive restarts.
type Cache interface {
	Save(key string, v any) bool
	Load(key string, out any) bool
	Delete(key string) error
}

// Controller performs user actions against the backend and records their
// outcome in State. It is the only writer of State apart from tests.
type Controller struct {
	api   api.API
	state *State
	view  View
	cache Cache
	now   func() time.Time

	tickInterval  time.Duration
	draftInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	clock  *schedule.Handle
	draft  *schedule.Debouncer
}

// Option configures a Controller.
type Option func(*Controller)

// WithCache persists categories, selection and answer drafts.
func WithCache(c Cache) Option {
	return func(ctl *Controller) { ctl.cache = c }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(ctl *Controller) { ctl.now = now }
}

// WithTickInterval sets how often the solve clock reports elapsed time.
func WithTickInterval(d time.Duration) Option {
	return func(ctl *Controller) { ctl.tickInterval = d }
}

// WithDraftDelay sets the quiet period before answer drafts are cached.
func WithDraftDelay(d time.Duration) Option {
	return func(ctl *Controller) { ctl.draftInterval = d }
}

// WithState uses an existing state instead of a fresh one.
func WithState(s *State) Option {
	return func(ctl *Controller) { ctl.state = s }
}

// New creates a controller. Call Close to stop its timers.
func New(client api.API, view View, opts ...Option) *Controller {
	c := &Controller{
		api:           client,
		view:          view,
		now:           time.Now,
		tickInterval:  time.Second,
		draftInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.state == nil {
		c.state = NewState()
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.draft = schedule.NewDebouncer(c.draftInterval)
	return c
}

// State returns the session state.
func (c *Controller) State() *State {
	return c.state
}

// Close stops the solve clock and writes any pending answer draft.
func (c *Controller) Close() {
	c.stopClock()
	c.draft.Flush()
	c.cancel()
}

func (c *Controller) fail(err error) error {
	c.view.Error(err)
	return err
}

// LoadCategories fetches the taxonomy. When the backend is unreachable a
// cached copy is used instead. A cached selection is restored if it is still valid.
func (c *Controller) LoadCategories(ctx context.Context) (model.CategorySet, error) {
	cs, err := c.api.Categories(ctx)
	if err != nil {
		if c.cache == nil || !c.cache.Load(KeyCategories, &cs) || cs.Empty() {
			return model.CategorySet{}, c.fail(fmt.Errorf("load categories: %w", err))
		}
		slog.Warn("using cached categories", "error", err)
	} else if c.cache != nil {
		c.cache.Save(KeyCategories, cs)
	}

	patch := Patch{Categories: &cs}
	var sel model.Selection
	if c.cache != nil && c.cache.Load(KeySelection, &sel) {
		if verr := sel.Validate(cs); verr == nil {
			patch.Selection = &sel
		} else {
			slog.Info("discarding cached selection", "error", verr)
		}
	}
	c.state.Update(patch)

	c.view.Notify("CategoriesLoaded", map[string]any{"Count": len(cs.Subjects())})
	c.view.Categories(cs, c.state.Snapshot().Selection)
	return cs, nil
}

// Select toggles one key of the selection. An invalid change leaves the
// selection as it was and returns an error wrapping model.ErrInvalidSelection.
func (c *Controller) Select(kind model.SelectionKind, key string, on bool) (model.Selection, error) {
	var (
		sel model.Selection
		err error
	)
	c.state.Modify(func(s Snapshot) Patch {
		if s.Categories.Empty() {
			err = ErrNoCategories
			return Patch{}
		}
		sel, err = s.Selection.Toggle(s.Categories, kind, key, on)
		if err != nil {
			return Patch{}
		}
		return Patch{Selection: &sel}
	})
	if err != nil {
		return model.Selection{}, c.fail(err)
	}
	if c.cache != nil {
		c.cache.Save(KeySelection, sel)
	}
	return sel, nil
}

// SetOptions stores the non-category generation parameters.
func (c *Controller) SetOptions(opts model.GenerationOptions) {
	c.state.Update(Patch{Options: &opts})
}

func (c *Controller) generationRequest() (model.GenerationRequest, error) {
	s := c.state.Snapshot()
	if s.Selection.Empty() {
		return model.GenerationRequest{}, ErrEmptySelection
	}
	return model.GenerationRequest{Selection: s.Selection, GenerationOptions: s.Options}, nil
}

// PreviewOptions asks the backend how the current selection would be distributed.
func (c *Controller) PreviewOptions(ctx context.Context) (model.QuestionOptions, error) {
	req, err := c.generationRequest()
	if err != nil {
		return model.QuestionOptions{}, c.fail(err)
	}
	opts, err := c.api.QuestionOptions(ctx, req)
	if err != nil {
		return model.QuestionOptions{}, c.fail(fmt.Errorf("preview options: %w", err))
	}
	c.view.Options(opts)
	return opts, nil
}

// GenerateWorksheet creates a worksheet from the current selection and makes
// it the current worksheet, replacing any previous one.
func (c *Controller) GenerateWorksheet(ctx context.Context) (model.Worksheet, error) {
	req, err := c.generationRequest()
	if err != nil {
		return model.Worksheet{}, c.fail(err)
	}
	ws, err := c.api.CreateWorksheet(ctx, req)
	if err != nil {
		return model.Worksheet{}, c.fail(fmt.Errorf("generate worksheet: %w", err))
	}
	c.setCurrent(ws)
	c.view.Notify("WorksheetGenerated", map[string]any{"ID": ws.ID})
	return ws, nil
}

// LoadWorksheet makes a saved worksheet the current one.
func (c *Controller) LoadWorksheet(ctx context.Context, id int64) (model.Worksheet, error) {
	ws, err := c.api.GetWorksheet(ctx, id)
	if err != nil {
		return model.Worksheet{}, c.fail(fmt.Errorf("load worksheet %d: %w", id, err))
	}
	c.setCurrent(ws)
	c.view.Notify("WorksheetLoaded", map[string]any{"ID": ws.ID})
	return ws, nil
}

func (c *Controller) setCurrent(ws model.Worksheet) {
	key := ws.AnswerKey()
	c.state.Update(Patch{
		Worksheet:        &ws,
		AnswerKey:        &key,
		Editing:          Ptr(false),
		EditingWorksheet: &model.Worksheet{},
	})
	c.view.Worksheet(ws, key)
}

// StartEditing fetches the current worksheet with answers and enters editing mode.
func (c *Controller) StartEditing(ctx context.Context) (model.Worksheet, error) {
	s := c.state.Snapshot()
	if !s.Worksheet.Loaded() {
		return model.Worksheet{}, c.fail(ErrNoWorksheet)
	}
	ws, err := c.api.GetWorksheetForEditing(ctx, s.Worksheet.ID)
	if err != nil {
		return model.Worksheet{}, c.fail(fmt.Errorf("load worksheet %d for editing: %w", s.Worksheet.ID, err))
	}
	key := ws.AnswerKey()
	c.state.Update(Patch{Editing: Ptr(true), EditingWorksheet: &ws, AnswerKey: &key})
	c.view.Worksheet(ws, key)
	return ws, nil
}

// StopEditing leaves editing mode. The edited copy becomes the current worksheet.
func (c *Controller) StopEditing() {
	c.state.Modify(func(s Snapshot) Patch {
		p := Patch{Editing: Ptr(false), EditingWorksheet: &model.Worksheet{}}
		if s.EditingWorksheet.Loaded() {
			p.Worksheet = &s.EditingWorksheet
		}
		return p
	})
}

// editTarget returns the id of the worksheet edits apply to.
func (c *Controller) editTarget() (int64, error) {
	s := c.state.Snapshot()
	switch {
	case s.Editing && s.EditingWorksheet.Loaded():
		return s.EditingWorksheet.ID, nil
	case s.Worksheet.Loaded():
		return s.Worksheet.ID, nil
	default:
		return 0, ErrNoWorksheet
	}
}

// updateLocal applies fn to every local copy of worksheet id.
func (c *Controller) updateLocal(id int64, fn func(ws *model.Worksheet, key model.AnswerKey)) {
	c.state.Modify(func(s Snapshot) Patch {
		if s.AnswerKey == nil {
			s.AnswerKey = model.AnswerKey{}
		}
		p := Patch{AnswerKey: &s.AnswerKey}
		if s.Worksheet.ID == id {
			fn(&s.Worksheet, s.AnswerKey)
			p.Worksheet = &s.Worksheet
		}
		if s.EditingWorksheet.ID == id {
			fn(&s.EditingWorksheet, s.AnswerKey)
			p.EditingWorksheet = &s.EditingWorksheet
		}
		return p
	})
}

// EditQuestion updates a question's text, format or choices.
func (c *Controller) EditQuestion(ctx context.Context, questionID string, upd model.QuestionUpdate) (model.Question, error) {
	id, err := c.editTarget()
	if err != nil {
		return model.Question{}, c.fail(err)
	}
	q, err := c.api.UpdateQuestion(ctx, id, questionID, upd)
	if err != nil {
		return model.Question{}, c.fail(fmt.Errorf("update question %s: %w", questionID, err))
	}
	if q.ID == "" {
		q.ID = questionID
	}
	c.updateLocal(id, func(ws *model.Worksheet, _ model.AnswerKey) {
		replaceQuestion(ws, q)
	})
	c.view.Notify("QuestionUpdated", map[string]any{"ID": questionID})
	return q, nil
}

// replaceQuestion swaps in q, keeping answer fields the response omitted.
func replaceQuestion(ws *model.Worksheet, q model.Question) {
	i := ws.QuestionIndex(q.ID)
	if i < 0 {
		return
	}
	old := ws.Questions[i]
	if q.Number == 0 {
		q.Number = old.Number
	}
	if q.CorrectAnswer == "" {
		q.CorrectAnswer = old.CorrectAnswer
	}
	if q.Explanation == "" {
		q.Explanation = old.Explanation
	}
	ws.Questions[i] = q
}

// DeleteQuestion removes a question and renumbers the rest.
func (c *Controller) DeleteQuestion(ctx context.Context, questionID string) error {
	id, err := c.editTarget()
	if err != nil {
		return c.fail(err)
	}
	if err := c.api.DeleteQuestion(ctx, id, questionID); err != nil {
		return c.fail(fmt.Errorf("delete question %s: %w", questionID, err))
	}
	c.updateLocal(id, func(ws *model.Worksheet, key model.AnswerKey) {
		ws.Questions = slices.DeleteFunc(ws.Questions, func(q model.Question) bool { return q.ID == questionID })
		for i := range ws.Questions {
			ws.Questions[i].Number = i + 1
		}
		ws.TotalQuestions = len(ws.Questions)
		delete(key, questionID)
	})
	c.view.Notify("QuestionDeleted", map[string]any{"ID": questionID})
	return nil
}

// EditAnswer updates a question's correct answer and explanation.
func (c *Controller) EditAnswer(ctx context.Context, questionID string, upd model.AnswerUpdate) error {
	id, err := c.editTarget()
	if err != nil {
		return c.fail(err)
	}
	if err := c.api.UpdateAnswer(ctx, id, questionID, upd); err != nil {
		return c.fail(fmt.Errorf("update answer %s: %w", questionID, err))
	}
	c.updateLocal(id, func(ws *model.Worksheet, key model.AnswerKey) {
		if i := ws.QuestionIndex(questionID); i >= 0 {
			ws.Questions[i].CorrectAnswer = upd.CorrectAnswer
			ws.Questions[i].Explanation = upd.Explanation
		}
		key[questionID] = model.KeyEntry{Answer: upd.CorrectAnswer, Explanation: upd.Explanation}
	})
	c.view.Notify("AnswerUpdated", map[string]any{"ID": questionID})
	return nil
}

// EditPassage updates a passage's content.
func (c *Controller) EditPassage(ctx context.Context, passageID, content string) error {
	id, err := c.editTarget()
	if err != nil {
		return c.fail(err)
	}
	if err := c.api.UpdatePassage(ctx, id, passageID, model.ContentUpdate{Content: content}); err != nil {
		return c.fail(fmt.Errorf("update passage %s: %w", passageID, err))
	}
	c.updateLocal(id, func(ws *model.Worksheet, _ model.AnswerKey) {
		for i := range ws.Passages {
			if ws.Passages[i].ID == passageID {
				ws.Passages[i].Content = content
			}
		}
	})
	c.view.Notify("PassageUpdated", map[string]any{"ID": passageID})
	return nil
}

// EditExample updates an example's content.
func (c *Controller) EditExample(ctx context.Context, exampleID, content string) error {
	id, err := c.editTarget()
	if err != nil {
		return c.fail(err)
	}
	if err := c.api.UpdateExample(ctx, id, exampleID, model.ContentUpdate{Content: content}); err != nil {
		return c.fail(fmt.Errorf("update example %s: %w", exampleID, err))
	}
	c.updateLocal(id, func(ws *model.Worksheet, _ model.AnswerKey) {
		for i := range ws.Examples {
			if ws.Examples[i].ID == exampleID {
				ws.Examples[i].Content = content
			}
		}
	})
	c.view.Notify("ExampleUpdated", map[string]any{"ID": exampleID})
	return nil
}

// AIEdit asks the backend to rewrite a question using an instruction of the
// given kind. note is optional free text, required for instructions.Custom.
func (c *Controller) AIEdit(ctx context.Context, questionID string, kind instructions.Kind, note string) (model.AIEditResponse, error) {
	id, err := c.editTarget()
	if err != nil {
		return model.AIEditResponse{}, c.fail(err)
	}
	s := c.state.Snapshot()
	ws := s.Worksheet
	if s.Editing && s.EditingWorksheet.Loaded() {
		ws = s.EditingWorksheet
	}
	i := ws.QuestionIndex(questionID)
	if i < 0 {
		return model.AIEditResponse{}, c.fail(fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID))
	}
	instruction, err := instructions.Build(kind, ws.Questions[i], ws.SchoolLevel, note)
	if err != nil {
		return model.AIEditResponse{}, c.fail(fmt.Errorf("build instruction: %w", err))
	}

	resp, err := c.api.AIEditQuestion(ctx, id, questionID, model.AIEditRequest{Instruction: instruction})
	if err != nil {
		return model.AIEditResponse{}, c.fail(fmt.Errorf("ai edit %s: %w", questionID, err))
	}
	if resp.Question.ID == "" {
		resp.Question.ID = questionID
	}
	c.updateLocal(id, func(ws *model.Worksheet, _ model.AnswerKey) {
		replaceQuestion(ws, resp.Question)
	})
	c.view.Notify("QuestionRewritten", map[string]any{"ID": questionID})
	return resp, nil
}

// PassageConnections lists the questions of the current worksheet that use a passage.
func (c *Controller) PassageConnections(ctx context.Context, passageID string) (model.PassageConnections, error) {
	id, err := c.editTarget()
	if err != nil {
		return model.PassageConnections{}, c.fail(err)
	}
	pc, err := c.api.PassageConnections(ctx, id, passageID)
	if err != nil {
		return model.PassageConnections{}, c.fail(fmt.Errorf("passage connections %s: %w", passageID, err))
	}
	return pc, nil
}

// StartSolving fetches worksheet id without answers, restores any cached
// answer draft and starts the solve clock.
func (c *Controller) StartSolving(ctx context.Context, id int64) (model.Worksheet, error) {
	ws, err := c.api.GetWorksheetForSolving(ctx, id)
	if err != nil {
		return model.Worksheet{}, c.fail(fmt.Errorf("load worksheet %d for solving: %w", id, err))
	}

	answers := model.Answers{}
	if c.cache != nil {
		var draft model.Answers
		if c.cache.Load(DraftKey(id), &draft) {
			for qid, a := range draft {
				if ws.QuestionIndex(qid) >= 0 {
					answers[qid] = a
				}
			}
		}
	}

	c.stopClock()
	c.draft.Stop()
	started := c.now()
	c.state.Update(Patch{SolvingWorksheet: &ws, Answers: &answers, SolveStartedAt: &started})
	c.clock = schedule.Every(c.ctx, c.tickInterval, func(time.Duration) {
		c.view.Tick(c.Elapsed())
	})

	c.view.Worksheet(ws, nil)
	c.view.Notify("SolvingStarted", map[string]any{"ID": ws.ID})
	if len(answers) > 0 {
		c.view.Notify("DraftRestored", map[string]any{"Count": len(answers)})
	}
	return ws, nil
}

// Elapsed returns the time since solving started, or zero when not solving.
func (c *Controller) Elapsed() time.Duration {
	s := c.state.Snapshot()
	if !s.SolvingWorksheet.Loaded() || s.SolveStartedAt.IsZero() {
		return 0
	}
	return c.now().Sub(s.SolveStartedAt)
}

func (c *Controller) stopClock() {
	c.clock.Stop()
	c.clock = nil
}

// SetAnswer records the student's answer to one question. An empty answer
// clears it. The draft is cached after a short quiet period.
func (c *Controller) SetAnswer(questionID, answer string) error {
	var (
		wsID    int64
		answers model.Answers
		err     error
	)
	c.state.Modify(func(s Snapshot) Patch {
		if !s.SolvingWorksheet.Loaded() {
			err = ErrNotSolving
			return Patch{}
		}
		if s.SolvingWorksheet.QuestionIndex(questionID) < 0 {
			err = fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
			return Patch{}
		}
		answers = s.Answers
		if answers == nil {
			answers = model.Answers{}
		}
		if answer == "" {
			delete(answers, questionID)
		} else {
			answers[questionID] = answer
		}
		wsID = s.SolvingWorksheet.ID
		return Patch{Answers: &answers}
	})
	if err != nil {
		return c.fail(err)
	}
	if c.cache != nil {
		c.draft.Trigger(func() { c.cache.Save(DraftKey(wsID), answers) })
	}
	return nil
}

// SubmitAnswers sends the collected answers for grading. On success the solve
// clock stops and the result becomes current in the Computed phase. On failure
// solving continues so the student can retry.
func (c *Controller) SubmitAnswers(ctx context.Context, studentName, className string) (model.GradingResult, error) {
	s := c.state.Snapshot()
	if !s.SolvingWorksheet.Loaded() {
		return model.GradingResult{}, c.fail(ErrNotSolving)
	}
	answers := s.Answers
	if answers == nil {
		answers = model.Answers{}
	}
	sub := model.AnswerSubmission{
		StudentName:    studentName,
		ClassName:      className,
		CompletionTime: int(c.Elapsed() / time.Second),
		Answers:        answers,
	}

	res, err := c.api.SubmitAnswers(ctx, s.SolvingWorksheet.ID, sub)
	if err != nil {
		return model.GradingResult{}, c.fail(fmt.Errorf("submit answers: %w", err))
	}

	c.stopClock()
	c.draft.Stop()
	if c.cache != nil {
		if err := c.cache.Delete(DraftKey(s.SolvingWorksheet.ID)); err != nil {
			slog.Warn("drop answer draft", "worksheet_id", s.SolvingWorksheet.ID, "error", err)
		}
	}
	c.state.Update(Patch{
		SolvingWorksheet: &model.Worksheet{},
		Answers:          &model.Answers{},
		SolveStartedAt:   &time.Time{},
	})
	c.setResult(res)
	c.view.Notify("AnswersSubmitted", map[string]any{"ID": res.ID})
	return res, nil
}

// LoadResult makes grading result id current. A different id restarts the
// review machine; reloading the current id never leaves Reviewed.
func (c *Controller) LoadResult(ctx context.Context, id int64) (model.GradingResult, error) {
	res, err := c.api.GetGradingResult(ctx, id)
	if err != nil {
		return model.GradingResult{}, c.fail(fmt.Errorf("load result %d: %w", id, err))
	}
	if res.ID == 0 {
		res.ID = id
	}
	c.setResult(res)
	return res, nil
}

func (c *Controller) setResult(res model.GradingResult) {
	c.state.Modify(func(s Snapshot) Patch {
		review := s.Review.loaded(res.ID, res.IsReviewed)
		p := Patch{Result: &res, ResultID: &res.ID, Review: &review}
		if s.ResultID != res.ID {
			p.ReviewDraft = &map[string]model.ReviewOverride{}
		}
		return p
	})
	c.view.Result(res)
}

// SetOverride records a reviewer adjustment for one question of the current result.
func (c *Controller) SetOverride(questionID string, o model.ReviewOverride) error {
	var err error
	c.state.Modify(func(s Snapshot) Patch {
		if s.Review.Phase == ReviewNone || !s.Result.Loaded() {
			err = ErrNoResult
			return Patch{}
		}
		found := slices.ContainsFunc(s.Result.QuestionResults, func(qr model.QuestionResult) bool {
			return qr.QuestionID == questionID
		})
		if !found {
			err = fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
			return Patch{}
		}
		draft := s.ReviewDraft
		if draft == nil {
			draft = map[string]model.ReviewOverride{}
		}
		draft[questionID] = o
		return Patch{ReviewDraft: &draft}
	})
	if err != nil {
		return c.fail(err)
	}
	return nil
}

// SaveReview sends the review draft for the current result. On success the
// result is re-fetched and the phase becomes Reviewed. On failure the phase
// is unchanged. The view's save control is disabled for the duration.
func (c *Controller) SaveReview(ctx context.Context, reviewer, notes string) (model.GradingResult, error) {
	s := c.state.Snapshot()
	if s.Review.Phase == ReviewNone {
		return model.GradingResult{}, c.fail(ErrNoResult)
	}
	id := s.Review.ResultID

	c.view.SetSaving(true)
	defer c.view.SetSaving(false)

	req := model.ReviewRequest{ReviewedBy: reviewer, Notes: notes, QuestionResults: s.ReviewDraft}
	if req.QuestionResults == nil {
		req.QuestionResults = map[string]model.ReviewOverride{}
	}
	if err := c.api.SaveReview(ctx, id, req); err != nil {
		return model.GradingResult{}, c.fail(fmt.Errorf("save review %d: %w", id, err))
	}

	reviewed := Reviewed(id)
	res, err := c.api.GetGradingResult(ctx, id)
	if err != nil {
		// The review is persisted; only the refresh failed.
		c.state.Update(Patch{Review: &reviewed})
		return s.Result, c.fail(fmt.Errorf("refresh result %d: %w", id, err))
	}
	c.state.Update(Patch{
		Result:      &res,
		Review:      &reviewed,
		ReviewDraft: &map[string]model.ReviewOverride{},
	})
	c.view.Result(res)
	c.view.Notify("ReviewSaved", map[string]any{"ID": id})
	return res, nil
}

// Upload sends a worksheet document to the backend and loads the result.
func (c *Controller) Upload(ctx context.Context, name string, r io.Reader) (model.Worksheet, error) {
	up, err := c.api.UploadWorksheetFile(ctx, name, r)
	if err != nil {
		return model.Worksheet{}, c.fail(fmt.Errorf("upload %s: %w", name, err))
	}
	c.view.Notify("Uploaded", map[string]any{"ID": up.WorksheetID})
	return c.LoadWorksheet(ctx, up.WorksheetID)
}
