package interpreter

import "javelin/interpreter-go/pkg/runtime"

type completionKind int

const (
	normalCompletion completionKind = iota
	breakCompletion
	continueCompletion
	returnCompletion
)

// completion is how a statement finished. Exceptions travel separately as
// *runtime.Thrown errors.
type completion struct {
	kind  completionKind
	label string
	value runtime.Value
}

func (c completion) String() string {
	var word string
	switch c.kind {
	case breakCompletion:
		word = "break"
	case continueCompletion:
		word = "continue"
	case returnCompletion:
		return "return"
	default:
		return "normal"
	}
	if c.label != "" {
		return word + " " + c.label
	}
	return word
}

// loopStep decides what a loop labeled label does after one run of its body.
// exit reports that the loop stops with out as its own completion.
func loopStep(c completion, label string) (exit bool, out completion) {
	switch c.kind {
	case breakCompletion:
		if c.label == "" {
			return true, completion{}
		}
		return true, c
	case continueCompletion:
		if c.label == "" || c.label == label {
			return false, completion{}
		}
		return true, c
	case returnCompletion:
		return true, c
	}
	return false, completion{}
}
