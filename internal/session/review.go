package session

import "fmt"

// ReviewPhase is the lifecycle stage of the current grading result.
type ReviewPhase int

const (
	ReviewNone ReviewPhase = iota
	ReviewComputed
	ReviewReviewed
)

func (p ReviewPhase) String() string {
	switch p {
	case ReviewNone:
		return "none"
	case ReviewComputed:
		return "computed"
	case ReviewReviewed:
		return "reviewed"
	default:
		return fmt.Sprintf("ReviewPhase(%d)", int(p))
	}
}

// ReviewState is the review phase together with the result it applies to.
type ReviewState struct {
	Phase    ReviewPhase
	ResultID int64
}

func (r ReviewState) String() string {
	if r.Phase == ReviewNone {
		return r.Phase.String()
	}
	return fmt.Sprintf("%s(%d)", r.Phase, r.ResultID)
}

// Computed returns the state for a freshly graded result.
func Computed(id int64) ReviewState {
	return ReviewState{Phase: ReviewComputed, ResultID: id}
}

// Reviewed returns the state for a result saved by a reviewer.
func Reviewed(id int64) ReviewState {
	return ReviewState{Phase: ReviewReviewed, ResultID: id}
}

// loaded returns the state after result id has been fetched or computed.
// A different id restarts the machine. The same id never leaves Reviewed.
func (r ReviewState) loaded(id int64, serverReviewed bool) ReviewState {
	if r.ResultID == id && r.Phase == ReviewReviewed {
		return r
	}
	if serverReviewed {
		return Reviewed(id)
	}
	return Computed(id)
}
