package app

import "github.com/iov-one/splitter"

// Result is returned by a successful top level execution.
type Result struct {
	// Events contains all change notifications emitted by the execution,
	// in emission order. Events of nested invocations that failed are not
	// included.
	Events []splitter.Event
}

// EventsNamed returns all events with given name.
func (r *Result) EventsNamed(name string) []splitter.Event {
	var res []splitter.Event
	for _, e := range r.Events {
		if e.Name == name {
			res = append(res, e)
		}
	}
	return res
}
