// Package session holds the client-side state of one worksheet session and
// the controller that moves it forward in response to user actions.
package session

import (
	"maps"
	"sync"
	"time"

	"github.com/pavelanni/worksheet/internal/model"
)

// Snapshot is a point-in-time copy of every session field. Mutating it has
// no effect on the State it came from.
type Snapshot struct {
	Categories       model.CategorySet
	Selection        model.Selection
	Options          model.GenerationOptions
	Worksheet        model.Worksheet
	AnswerKey        model.AnswerKey
	Editing          bool
	EditingWorksheet model.Worksheet
	SolvingWorksheet model.Worksheet
	Answers          model.Answers
	SolveStartedAt   time.Time
	Result           model.GradingResult
	ResultID         int64
	ReviewDraft      map[string]model.ReviewOverride
	Review           ReviewState
}

// Patch is a sparse update. Each non-nil field replaces the stored value;
// nil fields leave it untouched.
type Patch struct {
	Categories       *model.CategorySet
	Selection        *model.Selection
	Options          *model.GenerationOptions
	Worksheet        *model.Worksheet
	AnswerKey        *model.AnswerKey
	Editing          *bool
	EditingWorksheet *model.Worksheet
	SolvingWorksheet *model.Worksheet
	Answers          *model.Answers
	SolveStartedAt   *time.Time
	Result           *model.GradingResult
	ResultID         *int64
	ReviewDraft      *map[string]model.ReviewOverride
	Review           *ReviewState
}

// Ptr returns a pointer to v. It keeps Patch literals short.
func Ptr[T any](v T) *T {
	return &v
}

// State is the single owner of session data. It is safe for concurrent use.
type State struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewState returns an empty state in the no-result review phase.
func NewState() *State {
	return &State{}
}

// Snapshot returns a deep copy of every field.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Update applies p. No validation is performed.
func (s *State) Update(p Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(p)
}

// Modify applies the patch returned by fn, computed from the current
// snapshot, as one atomic step.
func (s *State) Modify(fn func(Snapshot) Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(fn(s.snap.clone()))
}

func (s *State) apply(p Patch) {
	if p.Categories != nil {
		s.snap.Categories = p.Categories.Clone()
	}
	if p.Selection != nil {
		s.snap.Selection = p.Selection.Clone()
	}
	if p.Options != nil {
		s.snap.Options = cloneOptions(*p.Options)
	}
	if p.Worksheet != nil {
		s.snap.Worksheet = p.Worksheet.Clone()
	}
	if p.AnswerKey != nil {
		s.snap.AnswerKey = maps.Clone(*p.AnswerKey)
	}
	if p.Editing != nil {
		s.snap.Editing = *p.Editing
	}
	if p.EditingWorksheet != nil {
		s.snap.EditingWorksheet = p.EditingWorksheet.Clone()
	}
	if p.SolvingWorksheet != nil {
		s.snap.SolvingWorksheet = p.SolvingWorksheet.Clone()
	}
	if p.Answers != nil {
		s.snap.Answers = maps.Clone(*p.Answers)
	}
	if p.SolveStartedAt != nil {
		s.snap.SolveStartedAt = *p.SolveStartedAt
	}
	if p.Result != nil {
		s.snap.Result = p.Result.Clone()
	}
	if p.ResultID != nil {
		s.snap.ResultID = *p.ResultID
	}
	if p.ReviewDraft != nil {
		s.snap.ReviewDraft = cloneDraft(*p.ReviewDraft)
	}
	if p.Review != nil {
		s.snap.Review = *p.Review
	}
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Categories = s.Categories.Clone()
	out.Selection = s.Selection.Clone()
	out.Options = cloneOptions(s.Options)
	out.Worksheet = s.Worksheet.Clone()
	out.AnswerKey = maps.Clone(s.AnswerKey)
	out.EditingWorksheet = s.EditingWorksheet.Clone()
	out.SolvingWorksheet = s.SolvingWorksheet.Clone()
	out.Answers = maps.Clone(s.Answers)
	out.Result = s.Result.Clone()
	out.ReviewDraft = cloneDraft(s.ReviewDraft)
	return out
}

func cloneOptions(o model.GenerationOptions) model.GenerationOptions {
	o.SubjectRatios = maps.Clone(o.SubjectRatios)
	o.FormatRatios = maps.Clone(o.FormatRatios)
	return o
}

func cloneDraft(d map[string]model.ReviewOverride) map[string]model.ReviewOverride {
	if d == nil {
		return nil
	}
	out := make(map[string]model.ReviewOverride, len(d))
	for k, v := range d {
		out[k] = v.Clone()
	}
	return out
}
