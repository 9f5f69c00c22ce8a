package model

import (
	"slices"
	"time"
)

// Subject is a top-level exam area offered for generation.
type Subject string

const (
	SubjectReading    Subject = "reading"
	SubjectGrammar    Subject = "grammar"
	SubjectVocabulary Subject = "vocabulary"
)

// QuestionFormat is the answer format of a generated question.
type QuestionFormat string

const (
	FormatMultipleChoice QuestionFormat = "multiple_choice"
	FormatShortAnswer    QuestionFormat = "short_answer"
	FormatEssay          QuestionFormat = "essay"
)

// Difficulty represents worksheet difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// GradingMethod records how a single answer was scored.
type GradingMethod string

const (
	GradingAuto   GradingMethod = "auto"
	GradingAI     GradingMethod = "ai"
	GradingManual GradingMethod = "manual"
)

// Category is a selectable reading type, vocabulary category or grammar topic.
type Category struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// GrammarCategory groups grammar topics.
type GrammarCategory struct {
	Key    string     `json:"key"`
	Name   string     `json:"name"`
	Topics []Category `json:"topics,omitempty"`
}

// CategorySet is the subject taxonomy returned by GET /categories.
type CategorySet struct {
	ReadingTypes         []Category        `json:"reading_types"`
	GrammarCategories    []GrammarCategory `json:"grammar_categories"`
	VocabularyCategories []Category        `json:"vocabulary_categories"`
}

// Empty reports whether nothing has been loaded.
func (c CategorySet) Empty() bool {
	return len(c.ReadingTypes) == 0 && len(c.GrammarCategories) == 0 && len(c.VocabularyCategories) == 0
}

// Subjects returns the subjects that have at least one selectable option.
func (c CategorySet) Subjects() []Subject {
	var out []Subject
	if len(c.ReadingTypes) > 0 {
		out = append(out, SubjectReading)
	}
	if len(c.GrammarCategories) > 0 {
		out = append(out, SubjectGrammar)
	}
	if len(c.VocabularyCategories) > 0 {
		out = append(out, SubjectVocabulary)
	}
	return out
}

// Clone returns a deep copy.
func (c CategorySet) Clone() CategorySet {
	out := CategorySet{
		ReadingTypes:         slices.Clone(c.ReadingTypes),
		VocabularyCategories: slices.Clone(c.VocabularyCategories),
	}
	for _, g := range c.GrammarCategories {
		g.Topics = slices.Clone(g.Topics)
		out.GrammarCategories = append(out.GrammarCategories, g)
	}
	return out
}

// GenerationOptions are the generation parameters besides the category selection.
type GenerationOptions struct {
	Title          string                 `json:"title,omitempty"`
	SchoolLevel    string                 `json:"school_level,omitempty"`
	Grade          int                    `json:"grade,omitempty"`
	TotalQuestions int                    `json:"total_questions"`
	Difficulty     Difficulty             `json:"difficulty,omitempty"`
	SubjectRatios  map[Subject]int        `json:"subject_ratios,omitempty"`
	FormatRatios   map[QuestionFormat]int `json:"format_ratios,omitempty"`
}

// GenerationRequest is the body of POST /question-options and POST /worksheets.
type GenerationRequest struct {
	Selection
	GenerationOptions
}

// QuestionOptions is the generation preview returned by POST /question-options.
type QuestionOptions struct {
	TotalQuestions      int                    `json:"total_questions"`
	SubjectDistribution map[Subject]int        `json:"subject_distribution"`
	FormatDistribution  map[QuestionFormat]int `json:"format_distribution"`
	EstimatedMinutes    int                    `json:"estimated_minutes,omitempty"`
}

// Question is a single generated question.
// CorrectAnswer and Explanation are only populated by the edit view.
type Question struct {
	ID            string         `json:"id"`
	Number        int            `json:"number"`
	Subject       Subject        `json:"subject,omitempty"`
	Format        QuestionFormat `json:"format"`
	Text          string         `json:"text"`
	Choices       []string       `json:"choices,omitempty"`
	PassageID     string         `json:"passage_id,omitempty"`
	ExampleID     string         `json:"example_id,omitempty"`
	CorrectAnswer string         `json:"correct_answer,omitempty"`
	Explanation   string         `json:"explanation,omitempty"`
}

// Passage is a reading passage shared by one or more questions.
type Passage struct {
	ID               string   `json:"id"`
	Content          string   `json:"content"`
	RelatedQuestions []string `json:"related_questions,omitempty"`
}

// Example is an example sentence block referenced by questions.
type Example struct {
	ID               string   `json:"id"`
	Content          string   `json:"content"`
	RelatedQuestions []string `json:"related_questions,omitempty"`
}

// Worksheet is a generated set of questions with passages and examples.
type Worksheet struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	SchoolLevel    string     `json:"school_level,omitempty"`
	Grade          int        `json:"grade,omitempty"`
	Difficulty     Difficulty `json:"difficulty,omitempty"`
	TotalQuestions int        `json:"total_questions"`
	Duration       int        `json:"duration,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	Questions      []Question `json:"questions"`
	Passages       []Passage  `json:"passages,omitempty"`
	Examples       []Example  `json:"examples,omitempty"`
}

// Loaded reports whether w holds a worksheet.
func (w Worksheet) Loaded() bool {
	return w.ID != 0
}

// Clone returns a deep copy.
func (w Worksheet) Clone() Worksheet {
	out := w
	if w.CreatedAt != nil {
		t := *w.CreatedAt
		out.CreatedAt = &t
	}
	out.Questions = nil
	for _, q := range w.Questions {
		q.Choices = slices.Clone(q.Choices)
		out.Questions = append(out.Questions, q)
	}
	out.Passages = nil
	for _, p := range w.Passages {
		p.RelatedQuestions = slices.Clone(p.RelatedQuestions)
		out.Passages = append(out.Passages, p)
	}
	out.Examples = nil
	for _, e := range w.Examples {
		e.RelatedQuestions = slices.Clone(e.RelatedQuestions)
		out.Examples = append(out.Examples, e)
	}
	return out
}

// QuestionIndex returns the position of the question with the given id, or -1.
func (w Worksheet) QuestionIndex(id string) int {
	return slices.IndexFunc(w.Questions, func(q Question) bool { return q.ID == id })
}

// AnswerKey derives the answer key from a worksheet fetched with answers.
func (w Worksheet) AnswerKey() AnswerKey {
	key := make(AnswerKey, len(w.Questions))
	for _, q := range w.Questions {
		if q.CorrectAnswer == "" && q.Explanation == "" {
			continue
		}
		key[q.ID] = KeyEntry{Answer: q.CorrectAnswer, Explanation: q.Explanation}
	}
	return key
}

// KeyEntry is the correct answer and explanation for one question.
type KeyEntry struct {
	Answer      string `json:"correct_answer"`
	Explanation string `json:"explanation,omitempty"`
}

// AnswerKey maps question id to its key entry.
type AnswerKey map[string]KeyEntry

// Answers maps question id to the student's answer.
type Answers map[string]string

// AnswerSubmission is the body of POST /worksheets/{id}/submit.
type AnswerSubmission struct {
	StudentName    string  `json:"student_name"`
	ClassName      string  `json:"class_name,omitempty"`
	CompletionTime int     `json:"completion_time"`
	Answers        Answers `json:"answers"`
}

// QuestionResult is the grading outcome for one question.
type QuestionResult struct {
	QuestionID    string        `json:"question_id" yaml:"question_id"`
	StudentAnswer string        `json:"student_answer" yaml:"student_answer"`
	CorrectAnswer string        `json:"correct_answer,omitempty" yaml:"correct_answer,omitempty"`
	Score         float64       `json:"score" yaml:"score"`
	MaxScore      float64       `json:"max_score" yaml:"max_score"`
	IsCorrect     bool          `json:"is_correct" yaml:"is_correct"`
	Feedback      string        `json:"ai_feedback,omitempty" yaml:"feedback,omitempty"`
	GradingMethod GradingMethod `json:"grading_method,omitempty" yaml:"grading_method,omitempty"`
}

// GradingResult is the computed score for one worksheet submission.
type GradingResult struct {
	ID              int64            `json:"id"`
	WorksheetID     int64            `json:"worksheet_id"`
	StudentName     string           `json:"student_name"`
	ClassName       string           `json:"class_name,omitempty"`
	CompletionTime  int              `json:"completion_time"`
	TotalScore      float64          `json:"total_score"`
	MaxScore        float64          `json:"max_score"`
	Percentage      float64          `json:"percentage"`
	IsReviewed      bool             `json:"is_reviewed"`
	ReviewedBy      string           `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt       *time.Time       `json:"created_at,omitempty"`
	QuestionResults []QuestionResult `json:"question_results"`
}

// Loaded reports whether r holds a result.
func (r GradingResult) Loaded() bool {
	return r.ID != 0
}

// Clone returns a deep copy.
func (r GradingResult) Clone() GradingResult {
	out := r
	if r.ReviewedAt != nil {
		t := *r.ReviewedAt
		out.ReviewedAt = &t
	}
	if r.CreatedAt != nil {
		t := *r.CreatedAt
		out.CreatedAt = &t
	}
	out.QuestionResults = slices.Clone(r.QuestionResults)
	return out
}

// ReviewOverride is a reviewer adjustment for one question. Nil fields keep the computed value.
type ReviewOverride struct {
	Score     *float64 `json:"score,omitempty"`
	IsCorrect *bool    `json:"is_correct,omitempty"`
	Feedback  *string  `json:"feedback,omitempty"`
}

// Clone returns a copy that shares no pointers with o.
func (o ReviewOverride) Clone() ReviewOverride {
	var out ReviewOverride
	if o.Score != nil {
		v := *o.Score
		out.Score = &v
	}
	if o.IsCorrect != nil {
		v := *o.IsCorrect
		out.IsCorrect = &v
	}
	if o.Feedback != nil {
		v := *o.Feedback
		out.Feedback = &v
	}
	return out
}

// ReviewRequest is the body of PUT /grading-results/{id}/review.
type ReviewRequest struct {
	ReviewedBy      string                    `json:"reviewed_by,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	QuestionResults map[string]ReviewOverride `json:"question_results"`
}

// QuestionUpdate is the body of PUT /worksheets/{id}/questions/{qid}.
type QuestionUpdate struct {
	Text    string         `json:"text"`
	Format  QuestionFormat `json:"format,omitempty"`
	Choices []string       `json:"choices,omitempty"`
}

// AnswerUpdate is the body of PUT /worksheets/{id}/questions/{qid}/answer.
type AnswerUpdate struct {
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

// ContentUpdate is the body of the passage and example edit endpoints.
type ContentUpdate struct {
	Content string `json:"content"`
}

// AIEditRequest asks the backend to rewrite a question.
type AIEditRequest struct {
	Instruction string `json:"instruction"`
}

// AIEditResponse carries the rewritten question.
type AIEditResponse struct {
	Question Question `json:"question"`
	Message  string   `json:"message,omitempty"`
}

// PassageConnections lists the questions that reference a passage.
type PassageConnections struct {
	PassageID   string   `json:"passage_id"`
	QuestionIDs []string `json:"question_ids"`
}

// HealthStatus is the liveness probe result.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// UploadResult is returned after a worksheet file upload.
type UploadResult struct {
	WorksheetID int64  `json:"worksheet_id"`
	Message     string `json:"message,omitempty"`
}
