// Package view renders session events as localized plain text.
package view

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pavelanni/worksheet/internal/format"
	"github.com/pavelanni/worksheet/internal/i18n"
	"github.com/pavelanni/worksheet/internal/model"
	"github.com/pavelanni/worksheet/internal/schedule"
)

// Text writes human-readable output to w. It is safe for concurrent use,
// since the solve clock reports from its own goroutine.
type Text struct {
	mu   sync.Mutex
	w    io.Writer
	tr   *i18n.Translator
	tick *schedule.Throttle
	last error
}

// NewText creates a text view. tickEvery limits how often elapsed time is
// printed; zero prints every tick.
func NewText(w io.Writer, tr *i18n.Translator, tickEvery time.Duration) *Text {
	t := &Text{w: w, tr: tr}
	if tickEvery > 0 {
		t.tick = schedule.NewThrottle(tickEvery)
	}
	return t
}

func (t *Text) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, s)
}

func (t *Text) Notify(msgID string, data map[string]any) {
	if count, ok := data["Count"].(int); ok {
		t.println(t.tr.Tpd(msgID, count, data))
		return
	}
	t.println(t.tr.Td(msgID, data))
}

func (t *Text) Error(err error) {
	t.mu.Lock()
	t.last = err
	t.mu.Unlock()
	t.println(t.tr.Td("ErrorLine", map[string]any{"Error": err.Error()}))
}

// Reported reports whether err was the last error printed.
func (t *Text) Reported(err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last != nil && errors.Is(err, t.last)
}

func (t *Text) Categories(cs model.CategorySet, sel model.Selection) {
	var b strings.Builder
	fmt.Fprintln(&b, t.tr.T("CategoriesHeader"))
	writeGroup(&b, t.tr.T("SubjectReading"), sel.HasSubject(model.SubjectReading), cs.ReadingTypes, sel.ReadingTypes)
	fmt.Fprintf(&b, "%s %s\n", mark(sel.HasSubject(model.SubjectGrammar)), t.tr.T("SubjectGrammar"))
	for _, g := range cs.GrammarCategories {
		fmt.Fprintf(&b, "  %s %s (%s)\n", mark(contains(sel.GrammarCategories, g.Key)), g.Name, g.Key)
		for _, topic := range g.Topics {
			fmt.Fprintf(&b, "    %s %s (%s)\n", mark(contains(sel.GrammarTopics, topic.Key)), topic.Name, topic.Key)
		}
	}
	writeGroup(&b, t.tr.T("SubjectVocabulary"), sel.HasSubject(model.SubjectVocabulary), cs.VocabularyCategories, sel.VocabularyCategories)
	t.println(strings.TrimRight(b.String(), "\n"))
}

func writeGroup(b *strings.Builder, title string, on bool, items []model.Category, selected []string) {
	fmt.Fprintf(b, "%s %s\n", mark(on), title)
	for _, c := range items {
		fmt.Fprintf(b, "  %s %s (%s)\n", mark(contains(selected, c.Key)), c.Name, c.Key)
	}
}

func mark(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func contains(list []string, key string) bool {
	for _, k := range list {
		if k == key {
			return true
		}
	}
	return false
}

func (t *Text) Options(opts model.QuestionOptions) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", t.tr.T("OptionsHeader"), t.tr.Tp("QuestionCount", opts.TotalQuestions))
	for _, subj := range []model.Subject{model.SubjectReading, model.SubjectGrammar, model.SubjectVocabulary} {
		if n, ok := opts.SubjectDistribution[subj]; ok {
			fmt.Fprintf(&b, "  %s: %d\n", t.subjectName(subj), n)
		}
	}
	for _, f := range []model.QuestionFormat{model.FormatMultipleChoice, model.FormatShortAnswer, model.FormatEssay} {
		if n, ok := opts.FormatDistribution[f]; ok {
			fmt.Fprintf(&b, "  %s: %d\n", f, n)
		}
	}
	if opts.EstimatedMinutes > 0 {
		fmt.Fprintln(&b, t.tr.Td("EstimatedMinutes", map[string]any{"Minutes": opts.EstimatedMinutes}))
	}
	t.println(strings.TrimRight(b.String(), "\n"))
}

func (t *Text) subjectName(s model.Subject) string {
	switch s {
	case model.SubjectReading:
		return t.tr.T("SubjectReading")
	case model.SubjectGrammar:
		return t.tr.T("SubjectGrammar")
	case model.SubjectVocabulary:
		return t.tr.T("SubjectVocabulary")
	}
	return string(s)
}

// Worksheet prints w. Answers are shown when key is non-empty.
func (t *Text) Worksheet(w model.Worksheet, key model.AnswerKey) {
	var b strings.Builder
	fmt.Fprintln(&b, t.tr.Td("WorksheetHeader", map[string]any{"ID": w.ID, "Title": w.Title}))
	if w.CreatedAt != nil {
		fmt.Fprintln(&b, t.tr.Td("WorksheetMeta", map[string]any{
			"Date":       format.Date(*w.CreatedAt),
			"Difficulty": w.Difficulty,
		}))
	}
	fmt.Fprintln(&b, t.tr.Tp("QuestionCount", len(w.Questions)))

	shown := make(map[string]bool)
	for _, q := range w.Questions {
		if q.PassageID != "" && !shown[q.PassageID] {
			shown[q.PassageID] = true
			for _, p := range w.Passages {
				if p.ID == q.PassageID {
					fmt.Fprintf(&b, "\n%s\n%s\n", t.tr.Td("PassageHeader", map[string]any{"ID": p.ID}), p.Content)
				}
			}
		}
		if q.ExampleID != "" && !shown["example:"+q.ExampleID] {
			shown["example:"+q.ExampleID] = true
			for _, e := range w.Examples {
				if e.ID == q.ExampleID {
					fmt.Fprintf(&b, "\n%s\n%s\n", t.tr.Td("ExampleHeader", map[string]any{"ID": e.ID}), e.Content)
				}
			}
		}

		fmt.Fprintf(&b, "\n%d. [%s] %s\n", q.Number, q.ID, q.Text)
		for i, c := range q.Choices {
			fmt.Fprintf(&b, "   %c) %s\n", 'A'+rune(i), c)
		}
		if k, ok := key[q.ID]; ok {
			fmt.Fprintf(&b, "   %s\n", t.tr.Td("AnswerLine", map[string]any{"Answer": k.Answer}))
			if k.Explanation != "" {
				fmt.Fprintf(&b, "   %s\n", t.tr.Td("ExplanationLine", map[string]any{"Text": k.Explanation}))
			}
		}
	}
	t.println(strings.TrimRight(b.String(), "\n"))
}

func (t *Text) Result(r model.GradingResult) {
	var b strings.Builder
	fmt.Fprintln(&b, t.tr.Td("ResultHeader", map[string]any{"ID": r.ID, "Student": r.StudentName}))
	fmt.Fprintln(&b, t.tr.Td("ScoreLine", map[string]any{
		"Score":   format.Score(r.TotalScore, r.MaxScore),
		"Percent": format.Percent(r.Percentage),
	}))
	fmt.Fprintln(&b, t.tr.Td("TimeLine", map[string]any{
		"Elapsed": format.Elapsed(time.Duration(r.CompletionTime) * time.Second),
	}))
	if r.IsReviewed {
		date := "-"
		if r.ReviewedAt != nil {
			date = format.DateTime(*r.ReviewedAt)
		}
		fmt.Fprintln(&b, t.tr.Td("ReviewedLine", map[string]any{"By": r.ReviewedBy, "Date": date}))
	} else {
		fmt.Fprintln(&b, t.tr.T("NotReviewed"))
	}
	for _, qr := range r.QuestionResults {
		verdict := t.tr.T("Incorrect")
		if qr.IsCorrect {
			verdict = t.tr.T("Correct")
		}
		fmt.Fprintf(&b, "  %s: %q %s (%s)", qr.QuestionID, qr.StudentAnswer, verdict, format.Score(qr.Score, qr.MaxScore))
		if qr.Feedback != "" {
			fmt.Fprintf(&b, " %s", qr.Feedback)
		}
		b.WriteString("\n")
	}
	t.println(strings.TrimRight(b.String(), "\n"))
}

func (t *Text) Tick(elapsed time.Duration) {
	if t.tick != nil && !t.tick.Allow() {
		return
	}
	t.println(t.tr.Td("ElapsedTick", map[string]any{"Elapsed": format.Elapsed(elapsed)}))
}

func (t *Text) SetSaving(saving bool) {
	if saving {
		t.println(t.tr.T("Saving"))
		return
	}
	t.println(t.tr.T("SaveDone"))
}

// Health prints a liveness probe result.
func (t *Text) Health(st model.HealthStatus) {
	id := "HealthOK"
	if st.Status != "ok" {
		id = "HealthError"
	}
	t.println(t.tr.Td(id, map[string]any{"Message": st.Message}))
}

// Worksheets prints a worksheet listing.
func (t *Text) Worksheets(list []model.Worksheet) {
	var b strings.Builder
	for _, w := range list {
		created := "-"
		if w.CreatedAt != nil {
			created = format.Date(*w.CreatedAt)
		}
		fmt.Fprintf(&b, "%d\t%s\t%s\t%s\n", w.ID, created, t.tr.Tp("QuestionCount", w.TotalQuestions), w.Title)
	}
	t.println(strings.TrimRight(b.String(), "\n"))
}

// Results prints a grading result listing.
func (t *Text) Results(list []model.GradingResult) {
	var b strings.Builder
	for _, r := range list {
		state := t.tr.T("NotReviewed")
		if r.IsReviewed {
			state = r.ReviewedBy
		}
		fmt.Fprintf(&b, "%d\t#%d\t%s\t%s\t%s\t%s\n", r.ID, r.WorksheetID, r.StudentName,
			format.Score(r.TotalScore, r.MaxScore), format.Percent(r.Percentage), state)
	}
	t.println(strings.TrimRight(b.String(), "\n"))
}
