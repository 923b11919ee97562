package splice

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sprakpolisen/dedem/lib"
)

var ErrUnannotatedEdit = errors.New("edit outside annotated spans")

// Verify checks that rewritten, as returned by Correct together with spans, keeps every
// byte of original outside the annotated words.
func Verify(original, rewritten string, annotations []lib.MistakeAnnotation, spans []Span) error {
	if len(annotations) != len(spans) {
		return fmt.Errorf("%w: %d annotations but %d corrected spans", ErrUnannotatedEdit, len(annotations), len(spans))
	}
	ordered := make([]lib.MistakeAnnotation, len(annotations))
	copy(ordered, annotations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	prevEnd, prevSpanEnd := 0, 0
	for i, a := range ordered {
		span := spans[i]
		if a.Start < prevEnd || a.End > len(original) || span.Start < prevSpanEnd || span.End > len(rewritten) || span.Start > span.End {
			return fmt.Errorf("%w: span %d out of range", ErrUnannotatedEdit, i)
		}
		if err := sameGap(original[prevEnd:a.Start], rewritten[prevSpanEnd:span.Start], prevEnd); err != nil {
			return err
		}
		prevEnd, prevSpanEnd = a.End, span.End
	}
	return sameGap(original[prevEnd:], rewritten[prevSpanEnd:], prevEnd)
}

func sameGap(want, got string, at int) error {
	if want == got {
		return nil
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	return fmt.Errorf("%w: at %d: %s", ErrUnannotatedEdit, at, dmp.DiffToDelta(diffs))
}
