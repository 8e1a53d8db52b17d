/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: warnings.go
Description: Ordered, deduplicated warning accumulator for a single generation call.
*/

package inference

import "fmt"

const (
	warnDoubleWidening = "numbers are widened to double; precision beyond 2^53 is not guaranteed"
)

type warnings struct {
	seen map[string]struct{}
	list []string
}

func newWarnings() *warnings {
	return &warnings{seen: make(map[string]struct{})}
}

// add records a warning once, keeping detection order
func (w *warnings) add(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if _, ok := w.seen[msg]; ok {
		return
	}
	w.seen[msg] = struct{}{}
	w.list = append(w.list, msg)
}

func (w *warnings) items() []string {
	out := make([]string, len(w.list))
	copy(out, w.list)
	return out
}
