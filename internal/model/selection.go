package model

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidSelection is returned when a selection is not a subset of the loaded category set.
var ErrInvalidSelection = errors.New("invalid selection")

// SelectionKind identifies which list of a Selection a key belongs to.
type SelectionKind string

const (
	KindSubject            SelectionKind = "subject"
	KindReadingType        SelectionKind = "reading_type"
	KindGrammarCategory    SelectionKind = "grammar_category"
	KindGrammarTopic       SelectionKind = "grammar_topic"
	KindVocabularyCategory SelectionKind = "vocabulary_category"
)

// Selection is the user's current choice of subjects and categories.
type Selection struct {
	Subjects             []Subject `json:"subjects"`
	ReadingTypes         []string  `json:"reading_types,omitempty"`
	GrammarCategories    []string  `json:"grammar_categories,omitempty"`
	GrammarTopics        []string  `json:"grammar_topics,omitempty"`
	VocabularyCategories []string  `json:"vocabulary_categories,omitempty"`
}

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	return Selection{
		Subjects:             slices.Clone(s.Subjects),
		ReadingTypes:         slices.Clone(s.ReadingTypes),
		GrammarCategories:    slices.Clone(s.GrammarCategories),
		GrammarTopics:        slices.Clone(s.GrammarTopics),
		VocabularyCategories: slices.Clone(s.VocabularyCategories),
	}
}

// Empty reports whether no subject is selected.
func (s Selection) Empty() bool {
	return len(s.Subjects) == 0
}

// HasSubject reports whether subj is selected.
func (s Selection) HasSubject(subj Subject) bool {
	return slices.Contains(s.Subjects, subj)
}

// Toggle returns a copy of s with key added (on) or removed (off) from the list named by kind.
// Deselecting a subject clears its sub-selections; deselecting a grammar category
// clears the topics that belong to it in cs.
func (s Selection) Toggle(cs CategorySet, kind SelectionKind, key string, on bool) (Selection, error) {
	out := s.Clone()
	switch kind {
	case KindSubject:
		subj := Subject(key)
		out.Subjects = toggle(out.Subjects, subj, on)
		if !on {
			switch subj {
			case SubjectReading:
				out.ReadingTypes = nil
			case SubjectGrammar:
				out.GrammarCategories = nil
				out.GrammarTopics = nil
			case SubjectVocabulary:
				out.VocabularyCategories = nil
			}
		}
	case KindReadingType:
		out.ReadingTypes = toggle(out.ReadingTypes, key, on)
	case KindGrammarCategory:
		out.GrammarCategories = toggle(out.GrammarCategories, key, on)
		if !on {
			for _, g := range cs.GrammarCategories {
				if g.Key != key {
					continue
				}
				for _, t := range g.Topics {
					out.GrammarTopics = toggle(out.GrammarTopics, t.Key, false)
				}
			}
		}
	case KindGrammarTopic:
		out.GrammarTopics = toggle(out.GrammarTopics, key, on)
	case KindVocabularyCategory:
		out.VocabularyCategories = toggle(out.VocabularyCategories, key, on)
	default:
		return s, fmt.Errorf("%w: unknown kind %q", ErrInvalidSelection, kind)
	}
	if err := out.Validate(cs); err != nil {
		return s, err
	}
	return out, nil
}

// Validate checks that every selected key exists in cs and that every
// sub-selection belongs to a selected subject.
func (s Selection) Validate(cs CategorySet) error {
	available := cs.Subjects()
	for _, subj := range s.Subjects {
		if !slices.Contains(available, subj) {
			return fmt.Errorf("%w: subject %q not available", ErrInvalidSelection, subj)
		}
	}

	if err := checkKeys(s.ReadingTypes, categoryKeys(cs.ReadingTypes), "reading type"); err != nil {
		return err
	}
	if len(s.ReadingTypes) > 0 && !s.HasSubject(SubjectReading) {
		return fmt.Errorf("%w: reading types selected without reading", ErrInvalidSelection)
	}

	var grammarKeys, topicKeys []string
	topicParent := make(map[string]string)
	for _, g := range cs.GrammarCategories {
		grammarKeys = append(grammarKeys, g.Key)
		for _, t := range g.Topics {
			topicKeys = append(topicKeys, t.Key)
			topicParent[t.Key] = g.Key
		}
	}
	if err := checkKeys(s.GrammarCategories, grammarKeys, "grammar category"); err != nil {
		return err
	}
	if err := checkKeys(s.GrammarTopics, topicKeys, "grammar topic"); err != nil {
		return err
	}
	for _, t := range s.GrammarTopics {
		if !slices.Contains(s.GrammarCategories, topicParent[t]) {
			return fmt.Errorf("%w: grammar topic %q selected without its category", ErrInvalidSelection, t)
		}
	}
	if len(s.GrammarCategories) > 0 && !s.HasSubject(SubjectGrammar) {
		return fmt.Errorf("%w: grammar categories selected without grammar", ErrInvalidSelection)
	}

	if err := checkKeys(s.VocabularyCategories, categoryKeys(cs.VocabularyCategories), "vocabulary category"); err != nil {
		return err
	}
	if len(s.VocabularyCategories) > 0 && !s.HasSubject(SubjectVocabulary) {
		return fmt.Errorf("%w: vocabulary categories selected without vocabulary", ErrInvalidSelection)
	}
	return nil
}

func categoryKeys(cats []Category) []string {
	keys := make([]string, 0, len(cats))
	for _, c := range cats {
		keys = append(keys, c.Key)
	}
	return keys
}

func checkKeys(selected, known []string, what string) error {
	for _, k := range selected {
		if !slices.Contains(known, k) {
			return fmt.Errorf("%w: unknown %s %q", ErrInvalidSelection, what, k)
		}
	}
	return nil
}

func toggle[T comparable](list []T, v T, on bool) []T {
	i := slices.Index(list, v)
	switch {
	case on && i < 0:
		return append(list, v)
	case !on && i >= 0:
		return slices.Delete(list, i, i+1)
	}
	return list
}
