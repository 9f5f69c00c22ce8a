package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/worksheet/internal/api"
	"github.com/pavelanni/worksheet/internal/fakeapi"
	"github.com/pavelanni/worksheet/internal/instructions"
	"github.com/pavelanni/worksheet/internal/model"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parsePairs splits "key=value" flags into a map.
func parsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[k] = v
	}
	return out, nil
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			st := a.client.HealthCheck(cmd.Context())
			a.view.Health(st)
			if st.Status == "error" {
				return fmt.Errorf("backend unavailable")
			}
			return nil
		}),
	}
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the subject taxonomy and the saved selection",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			_, err := a.ctl.LoadCategories(cmd.Context())
			return err
		}),
	}
}

func addSelectionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceP("subject", "s", nil, "Subjects (reading, grammar, vocabulary); omit to use the saved selection")
	f.StringSlice("reading-type", nil, "Reading types")
	f.StringSlice("grammar-category", nil, "Grammar categories")
	f.StringSlice("grammar-topic", nil, "Grammar topics")
	f.StringSlice("vocabulary", nil, "Vocabulary categories")
	f.IntP("questions", "n", 10, "Total number of questions")
	f.StringP("difficulty", "d", string(model.DifficultyMedium), "Difficulty (easy, medium, hard)")
	f.String("title", "", "Worksheet title")
	f.String("school-level", "", "School level, e.g. middle")
	f.Int("grade", 0, "Grade within the school level")
}

// applySelection loads categories and applies the selection flags. Without
// --subject the cached selection is kept.
func applySelection(cmd *cobra.Command, a *app) error {
	if _, err := a.ctl.LoadCategories(cmd.Context()); err != nil {
		return err
	}
	v := a.v
	subjects := v.GetStringSlice("subject")
	if len(subjects) > 0 {
		// Start from a clean selection.
		for _, subj := range a.ctl.State().Snapshot().Selection.Subjects {
			if _, err := a.ctl.Select(model.KindSubject, string(subj), false); err != nil {
				return err
			}
		}
		steps := []struct {
			kind model.SelectionKind
			keys []string
		}{
			{model.KindSubject, subjects},
			{model.KindReadingType, v.GetStringSlice("reading-type")},
			{model.KindGrammarCategory, v.GetStringSlice("grammar-category")},
			{model.KindGrammarTopic, v.GetStringSlice("grammar-topic")},
			{model.KindVocabularyCategory, v.GetStringSlice("vocabulary")},
		}
		for _, step := range steps {
			for _, key := range step.keys {
				if _, err := a.ctl.Select(step.kind, strings.TrimSpace(key), true); err != nil {
					return err
				}
			}
		}
	}
	a.ctl.SetOptions(model.GenerationOptions{
		Title:          v.GetString("title"),
		SchoolLevel:    v.GetString("school-level"),
		Grade:          v.GetInt("grade"),
		TotalQuestions: v.GetInt("questions"),
		Difficulty:     model.Difficulty(v.GetString("difficulty")),
	})
	return nil
}

func optionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Preview how a selection would be distributed",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := applySelection(cmd, a); err != nil {
				return err
			}
			_, err := a.ctl.PreviewOptions(cmd.Context())
			return err
		}),
	}
	addSelectionFlags(cmd)
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new worksheet",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := applySelection(cmd, a); err != nil {
				return err
			}
			_, err := a.ctl.GenerateWorksheet(cmd.Context())
			return err
		}),
	}
	addSelectionFlags(cmd)
	return cmd
}

func addPagingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("skip", 0, "Number of entries to skip")
	cmd.Flags().Int("limit", 0, "Maximum number of entries (0 = server default)")
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved worksheets",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			list, err := a.client.ListWorksheets(cmd.Context(), api.ListOptions{
				Skip:  a.v.GetInt("skip"),
				Limit: a.v.GetInt("limit"),
			})
			if err != nil {
				return err
			}
			a.view.Worksheets(list)
			return nil
		}),
	}
	addPagingFlags(cmd)
	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show WORKSHEET_ID",
		Short: "Show a worksheet, optionally with answers",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if a.v.GetBool("answers") {
				_, err = a.ctl.LoadWorksheet(cmd.Context(), id)
				return err
			}
			ws, err := a.client.GetWorksheetForSolving(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.view.Worksheet(ws, nil)
			return nil
		}),
	}
	cmd.Flags().Bool("answers", false, "Include correct answers and explanations")
	return cmd
}

// loadTarget makes worksheet arg the target of the following edit.
func loadTarget(cmd *cobra.Command, a *app, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	_, err = a.ctl.LoadWorksheet(cmd.Context(), id)
	return err
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit questions, answers, passages and examples",
	}

	question := &cobra.Command{
		Use:   "question WORKSHEET_ID QUESTION_ID",
		Short: "Change a question's text, format or choices",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := loadTarget(cmd, a, args[0]); err != nil {
				return err
			}
			_, err := a.ctl.EditQuestion(cmd.Context(), args[1], model.QuestionUpdate{
				Text:    a.v.GetString("text"),
				Format:  model.QuestionFormat(a.v.GetString("format")),
				Choices: a.v.GetStringSlice("choice"),
			})
			return err
		}),
	}
	question.Flags().String("text", "", "New question text")
	question.Flags().String("format", "", "New format (multiple_choice, short_answer, essay)")
	question.Flags().StringSlice("choice", nil, "Replacement choices (repeatable)")

	answer := &cobra.Command{
		Use:   "answer WORKSHEET_ID QUESTION_ID",
		Short: "Change a question's correct answer and explanation",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := loadTarget(cmd, a, args[0]); err != nil {
				return err
			}
			return a.ctl.EditAnswer(cmd.Context(), args[1], model.AnswerUpdate{
				CorrectAnswer: a.v.GetString("answer"),
				Explanation:   a.v.GetString("explanation"),
			})
		}),
	}
	answer.Flags().String("answer", "", "Correct answer")
	answer.Flags().String("explanation", "", "Explanation")
	_ = answer.MarkFlagRequired("answer")

	passage := &cobra.Command{
		Use:   "passage WORKSHEET_ID PASSAGE_ID",
		Short: "Replace a passage's content",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := loadTarget(cmd, a, args[0]); err != nil {
				return err
			}
			return a.ctl.EditPassage(cmd.Context(), args[1], a.v.GetString("content"))
		}),
	}
	passage.Flags().String("content", "", "New content")
	_ = passage.MarkFlagRequired("content")

	example := &cobra.Command{
		Use:   "example WORKSHEET_ID EXAMPLE_ID",
		Short: "Replace an example's content",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := loadTarget(cmd, a, args[0]); err != nil {
				return err
			}
			return a.ctl.EditExample(cmd.Context(), args[1], a.v.GetString("content"))
		}),
	}
	example.Flags().String("content", "", "New content")
	_ = example.MarkFlagRequired("content")

	connections := &cobra.Command{
		Use:   "connections WORKSHEET_ID PASSAGE_ID",
		Short: "List the questions that use a passage",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := loadTarget(cmd, a, args[0]); err != nil {
				return err
			}
			pc, err := a.ctl.PassageConnections(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", pc.PassageID, strings.Join(pc.QuestionIDs, ", "))
			return nil
		}),
	}

	cmd.AddCommand(question, answer, passage, example, connections)
	return cmd
}

func deleteQuestionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-question WORKSHEET_ID QUESTION_ID",
		Short: "Delete a question from a worksheet",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := loadTarget(cmd, a, args[0]); err != nil {
				return err
			}
			return a.ctl.DeleteQuestion(cmd.Context(), args[1])
		}),
	}
}

func aiEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai-edit WORKSHEET_ID QUESTION_ID",
		Short: "Ask the backend to rewrite a question",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			kind := strings.ToLower(strings.TrimSpace(a.v.GetString("kind")))
			if !instructions.IsValidKind(kind) {
				return fmt.Errorf("invalid kind %q (want one of %v)", kind, instructions.Kinds)
			}
			if err := loadTarget(cmd, a, args[0]); err != nil {
				return err
			}
			resp, err := a.ctl.AIEdit(cmd.Context(), args[1], instructions.Kind(kind), a.v.GetString("note"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", resp.Question.Number, resp.Question.Text)
			return nil
		}),
	}
	cmd.Flags().String("kind", string(instructions.Rephrase), "Instruction kind (simplify, harder, rephrase, custom)")
	cmd.Flags().String("note", "", "Extra request; required for --kind custom")
	return cmd
}

func solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve WORKSHEET_ID",
		Short: "Solve a worksheet and submit the answers for grading",
		Long: `Solve a worksheet. Answers given with --answer are submitted at once.
Without --answer, answers are read from stdin as "QUESTION_ID ANSWER" lines;
a line "submit" or end of input submits. Answers are saved as a draft and
restored if solving is interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			student := a.v.GetString("student")
			if student == "" {
				return fmt.Errorf("--student is required")
			}
			raw, _ := cmd.Flags().GetStringArray("answer")
			answers, err := parsePairs(raw)
			if err != nil {
				return err
			}
			if _, err := a.ctl.StartSolving(cmd.Context(), id); err != nil {
				return err
			}
			if len(answers) > 0 {
				for qid, ans := range answers {
					if err := a.ctl.SetAnswer(qid, ans); err != nil {
						return err
					}
				}
			} else if err := readAnswers(cmd.InOrStdin(), a); err != nil {
				return err
			}
			_, err = a.ctl.SubmitAnswers(cmd.Context(), student, a.v.GetString("class"))
			return err
		}),
	}
	cmd.Flags().String("student", "", "Student name")
	cmd.Flags().String("class", "", "Class name")
	cmd.Flags().StringArray("answer", nil, "Answer as QUESTION_ID=ANSWER (repeatable)")
	return cmd
}

// readAnswers reads "QUESTION_ID ANSWER" lines until "submit" or EOF.
// Invalid lines are reported and skipped.
func readAnswers(r io.Reader, a *app) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "submit" {
			return nil
		}
		qid, ans, _ := strings.Cut(line, " ")
		_ = a.ctl.SetAnswer(qid, strings.TrimSpace(ans))
	}
	return sc.Err()
}

func resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List grading results",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			list, err := a.client.ListGradingResults(cmd.Context(), api.ListOptions{
				WorksheetID: a.v.GetInt64("worksheet"),
				Skip:        a.v.GetInt("skip"),
				Limit:       a.v.GetInt("limit"),
			})
			if err != nil {
				return err
			}
			a.view.Results(list)
			return nil
		}),
	}
	cmd.Flags().Int64("worksheet", 0, "Only results for this worksheet")
	addPagingFlags(cmd)
	return cmd
}

func resultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result RESULT_ID",
		Short: "Show one grading result",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, err = a.ctl.LoadResult(cmd.Context(), id)
			return err
		}),
	}
}

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review RESULT_ID",
		Short: "Adjust and approve a grading result",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			overrides, err := reviewOverrides(cmd, a)
			if err != nil {
				return err
			}
			if _, err := a.ctl.LoadResult(cmd.Context(), id); err != nil {
				return err
			}
			for qid, o := range overrides {
				if err := a.ctl.SetOverride(qid, o); err != nil {
					return err
				}
			}
			_, err = a.ctl.SaveReview(cmd.Context(), a.v.GetString("reviewer"), a.v.GetString("notes"))
			return err
		}),
	}
	f := cmd.Flags()
	f.StringSlice("score", nil, "Score override as QUESTION_ID=SCORE (repeatable)")
	f.StringSlice("correct", nil, "Correctness override as QUESTION_ID=true|false (repeatable)")
	f.StringArray("feedback", nil, "Feedback as QUESTION_ID=TEXT (repeatable)")
	f.String("reviewer", "", "Reviewer name")
	f.String("notes", "", "Review notes")
	return cmd
}

func reviewOverrides(cmd *cobra.Command, a *app) (map[string]model.ReviewOverride, error) {
	out := make(map[string]model.ReviewOverride)
	scores, err := parsePairs(a.v.GetStringSlice("score"))
	if err != nil {
		return nil, err
	}
	for qid, s := range scores {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("score for %s: %w", qid, err)
		}
		o := out[qid]
		o.Score = &v
		out[qid] = o
	}
	correct, err := parsePairs(a.v.GetStringSlice("correct"))
	if err != nil {
		return nil, err
	}
	for qid, s := range correct {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("correct for %s: %w", qid, err)
		}
		o := out[qid]
		o.IsCorrect = &v
		out[qid] = o
	}
	// Feedback may contain commas, so it bypasses viper's slice splitting.
	raw, _ := cmd.Flags().GetStringArray("feedback")
	feedback, err := parsePairs(raw)
	if err != nil {
		return nil, err
	}
	for qid, s := range feedback {
		s := s
		o := out[qid]
		o.Feedback = &s
		out[qid] = o
	}
	return out, nil
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a worksheet document",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()
			_, err = a.ctl.Upload(cmd.Context(), filepath.Base(args[0]), f)
			return err
		}),
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export WORKSHEET_ID",
		Short: "Export the grading results of a worksheet as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ws, err := a.client.GetWorksheet(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("load worksheet: %w", err)
			}
			results, err := a.client.ListGradingResults(cmd.Context(), api.ListOptions{WorksheetID: id})
			if err != nil {
				return fmt.Errorf("list results: %w", err)
			}
			export := model.NewResultsExport(ws, results, time.Now())

			var data []byte
			switch f := strings.ToLower(a.v.GetString("format")); f {
			case "json":
				data, err = json.MarshalIndent(export, "", "  ")
			case "yaml", "yml":
				data, err = yaml.Marshal(export)
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", f)
			}
			if err != nil {
				return fmt.Errorf("marshal export: %w", err)
			}
			data = bytes.TrimRight(data, "\n")

			outPath := a.v.GetString("output")
			var w io.Writer
			if outPath == "" || outPath == "-" {
				w = cmd.OutOrStdout()
			} else {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if _, err := w.Write(data); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			_, _ = fmt.Fprintln(w)
			return nil
		}),
	}
	cmd.Flags().StringP("output", "o", "-", "Output file path (- for stdout)")
	cmd.Flags().StringP("format", "f", "json", "Output format (json, yaml)")
	return cmd
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local cache",
	}

	requireCache := func(a *app) error {
		if a.cache == nil {
			return fmt.Errorf("cache is disabled")
		}
		return nil
	}

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List cached keys",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := requireCache(a); err != nil {
				return err
			}
			list, err := a.cache.Keys()
			if err != nil {
				return err
			}
			for _, k := range list {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		}),
	}

	get := &cobra.Command{
		Use:   "get KEY",
		Short: "Print a cached value",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := requireCache(a); err != nil {
				return err
			}
			raw, err := a.cache.LoadRaw(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		}),
	}

	set := &cobra.Command{
		Use:   "set KEY JSON",
		Short: "Store a JSON value",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := requireCache(a); err != nil {
				return err
			}
			var v any
			if err := json.Unmarshal([]byte(args[1]), &v); err != nil {
				return fmt.Errorf("parse value: %w", err)
			}
			if !a.cache.Save(args[0], v) {
				return fmt.Errorf("save %s failed", args[0])
			}
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "del KEY",
		Short: "Delete a cached value",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if err := requireCache(a); err != nil {
				return err
			}
			return a.cache.Delete(args[0])
		}),
	}

	cmd.AddCommand(keys, get, set, del)
	return cmd
}

func fakeBackendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fake-backend",
		Short: "Serve an in-memory backend for demos and local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c := setupLogging(cmd); c != nil {
				defer c.Close()
			}
			v := viperForCmd(cmd)

			srv := &http.Server{
				Addr:              v.GetString("addr"),
				Handler:           fakeapi.New().Mount(v.GetString("base-path")),
				ReadHeaderTimeout: 10 * time.Second,
			}
			slog.Info("starting fake backend", "addr", srv.Addr, "base_path", v.GetString("base-path"))

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}
		},
	}
	cmd.Flags().String("addr", ":8000", "Listen address")
	cmd.Flags().String("base-path", "/api", "URL prefix of the API routes")
	return cmd
}
