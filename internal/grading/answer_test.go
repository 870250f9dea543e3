package grading

import (
	"reflect"
	"testing"
)

func TestDecodeAnswerShapes(t *testing.T) {
	if a := DecodeAnswer("A"); !a.Provided() || a.Text() != "A" {
		t.Fatalf("string answer: %+v", a)
	}
	if a := DecodeAnswer([]string{"A", "B"}); !reflect.DeepEqual(a.List(), []string{"A", "B"}) {
		t.Fatalf("[]string answer: %+v", a)
	}
	if a := DecodeAnswer([]interface{}{"A", 1, "B"}); !reflect.DeepEqual(a.List(), []string{"A", "B"}) {
		t.Fatalf("[]interface{} answer must drop non-strings: %+v", a)
	}
	if a := DecodeAnswer(12.5); a.Provided() {
		t.Fatalf("number must decode as unanswered: %+v", a)
	}
	if a := DecodeAnswer(nil); a.Provided() {
		t.Fatalf("nil must decode as unanswered: %+v", a)
	}
}

func TestAnswerWire(t *testing.T) {
	if v := SingleAnswer("A").Wire(); v != "A" {
		t.Fatalf("scalar wire form = %v", v)
	}
	if v := MultiAnswer([]string{"A"}).Wire(); !reflect.DeepEqual(v, []string{"A"}) {
		t.Fatalf("list wire form = %v", v)
	}
	if v := (Answer{}).Wire(); v != nil {
		t.Fatalf("unanswered wire form = %v", v)
	}
}

func TestSubmissionDualKeying(t *testing.T) {
	sub := DecodeSubmission(map[string]interface{}{
		"q7": "by-id",
		"2":  "by-index",
	})
	if a := sub.AnswerFor("q7", 0); a.Text() != "by-id" {
		t.Fatalf("id lookup: %+v", a)
	}
	if a := sub.AnswerFor("q9", 2); a.Text() != "by-index" {
		t.Fatalf("index fallback: %+v", a)
	}
	if a := sub.AnswerFor("q9", 5); a.Provided() {
		t.Fatalf("absent answer must be unprovided: %+v", a)
	}
}
