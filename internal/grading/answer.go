package grading

import "strconv"

// Answer is a learner's response to a single question: either one option
// text (or free text) or a list of option texts for multi-select questions.
type Answer struct {
	texts    []string
	list     bool
	provided bool
}

func SingleAnswer(text string) Answer {
	return Answer{texts: []string{text}, provided: true}
}

func MultiAnswer(texts []string) Answer {
	return Answer{texts: texts, list: true, provided: true}
}

// Provided reports whether the learner answered at all. A missing answer
// grades as zero credit, never as an error.
func (a Answer) Provided() bool { return a.provided }

// Text returns the scalar form: the answer itself, or the first element of
// a list answer.
func (a Answer) Text() string {
	if len(a.texts) == 0 {
		return ""
	}
	return a.texts[0]
}

// List returns the list form, wrapping a scalar answer in a one-element
// slice.
func (a Answer) List() []string {
	return a.texts
}

// Wire returns the JSON-facing shape: string for scalar answers, []string
// for list answers, nil when unanswered.
func (a Answer) Wire() interface{} {
	if !a.provided {
		return nil
	}
	if a.list {
		return a.texts
	}
	return a.Text()
}

// DecodeAnswer converts a decoded JSON value into an Answer. Unsupported
// shapes yield an unanswered Answer; non-string elements of a list are
// dropped.
func DecodeAnswer(v interface{}) Answer {
	switch t := v.(type) {
	case string:
		return SingleAnswer(t)
	case []string:
		return MultiAnswer(t)
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return MultiAnswer(out)
	default:
		return Answer{}
	}
}

// Submission maps question ids to answers. Some clients key answers by the
// question's position instead of its id, so lookups fall back to the
// stringified index.
type Submission struct {
	answers map[string]Answer
}

func NewSubmission() Submission {
	return Submission{answers: map[string]Answer{}}
}

// DecodeSubmission converts a wire payload (question id or index -> raw
// answer value) into a Submission.
func DecodeSubmission(raw map[string]interface{}) Submission {
	s := NewSubmission()
	for k, v := range raw {
		s.answers[k] = DecodeAnswer(v)
	}
	return s
}

func (s Submission) Set(questionID string, a Answer) {
	s.answers[questionID] = a
}

// AnswerFor looks up the answer for a question, first by id, then by the
// question's zero-based index.
func (s Submission) AnswerFor(questionID string, index int) Answer {
	if a, ok := s.answers[questionID]; ok {
		return a
	}
	if a, ok := s.answers[strconv.Itoa(index)]; ok {
		return a
	}
	return Answer{}
}
