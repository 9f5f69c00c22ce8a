// Package instructions builds the natural-language instructions sent with
// AI question-edit requests.
package instructions

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/worksheet/internal/model"
)

// MaxLength is the longest instruction, in runes, sent to the backend.
const MaxLength = 2000

//go:embed templates/*.txt
var templateFS embed.FS

var tagRegex = regexp.MustCompile(`(?i)</?\s*(system|instruction|instructions|assistant|user)\b[^>]*>`)

// Kind selects an instruction template.
type Kind string

const (
	Simplify Kind = "simplify"
	Harder   Kind = "harder"
	Rephrase Kind = "rephrase"
	Custom   Kind = "custom"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{Simplify, Harder, Rephrase, Custom}

// ErrEmptyNote is returned for a custom instruction without text.
var ErrEmptyNote = errors.New("custom instruction requires text")

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[Kind]*template.Template
)

// IsValidKind checks if name is a supported kind.
func IsValidKind(name string) bool {
	for _, k := range Kinds {
		if string(k) == name {
			return true
		}
	}
	return false
}

// Data holds template data for one instruction.
type Data struct {
	Number int
	Format model.QuestionFormat
	Level  string
	Note   string
}

func load() error {
	loadOnce.Do(func() {
		templates = make(map[Kind]*template.Template, len(Kinds))
		for _, k := range Kinds {
			file := "templates/" + string(k) + ".txt"
			content, err := templateFS.ReadFile(file)
			if err != nil {
				loadErr = fmt.Errorf("read template %s: %w", file, err)
				return
			}
			tmpl, err := template.New(string(k)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse template %s: %w", file, err)
				return
			}
			templates[k] = tmpl
		}
	})
	return loadErr
}

// Build renders the instruction of the given kind for q. note is free text
// from the user; it is required for Custom and optional otherwise.
func Build(kind Kind, q model.Question, level, note string) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	tmpl, ok := templates[kind]
	if !ok {
		return "", fmt.Errorf("invalid instruction kind %q", kind)
	}

	note = Sanitize(note)
	if kind == Custom && note == "" {
		return "", ErrEmptyNote
	}
	if level == "" {
		level = "middle school"
	}
	format := q.Format
	if format == "" {
		format = model.FormatMultipleChoice
	}

	data := Data{Number: q.Number, Format: format, Level: level, Note: note}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return truncate(strings.TrimSpace(buf.String())), nil
}

// Sanitize strips role-like markup, trims whitespace and limits length.
func Sanitize(s string) string {
	s = tagRegex.ReplaceAllString(s, "")
	return truncate(strings.TrimSpace(s))
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxLength {
		return s
	}
	return string([]rune(s)[:MaxLength])
}
