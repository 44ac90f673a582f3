package moderation

import (
	"github.com/polite-web/polite-backend/models"
)

// Evaluation is one classifier verdict on a text.
type Evaluation struct {
	Over  bool
	Score float64
}

// OverThreshold applies the system-wide tie-break rule: a score equal to the
// threshold is NOT over-threshold. Both the first and the second evaluation
// of a submission use this same comparison.
func OverThreshold(score, threshold float64) bool {
	return score > threshold
}

// Decision is the resolver's verdict on a submission.
type Decision struct {
	FinalSource models.FinalSource

	// NeedsPolite is set when a polite rendition must exist before the
	// outcome can be finalized (final or stored alongside).
	NeedsPolite bool

	// WasEdited is true only when the user's edit is accepted verbatim.
	WasEdited bool

	// SubmitSuccess is false only on the block path's rejection.
	SubmitSuccess bool
}

// Resolve maps a post's policy mode and the classifier outcomes to the final
// provenance of the submission. It is pure: no I/O, deterministic given its
// inputs.
//
//	mode            original.Over  edit      edit.Over  =>  final source
//	block           false          -          -             original
//	block           true           -          -             blocked
//	nofilter        any            -          -             nofilter
//	polite_one_edit false          -          -             original
//	polite_one_edit true           absent     -             polite
//	polite_one_edit true           present    false         user_edit
//	polite_one_edit true           present    true          polite (forced)
func Resolve(mode models.PolicyMode, original Evaluation, edit *Evaluation) Decision {
	switch mode {
	case models.PolicyModeNoFilter:
		// Classification is recorded but never blocks or rewrites.
		return Decision{FinalSource: models.FinalSourceNoFilter, SubmitSuccess: true}

	case models.PolicyModeBlock:
		if original.Over {
			return Decision{FinalSource: models.FinalSourceBlocked, SubmitSuccess: false}
		}
		return Decision{FinalSource: models.FinalSourceOriginal, SubmitSuccess: true}

	default: // polite_one_edit
		if !original.Over {
			return Decision{FinalSource: models.FinalSourceOriginal, SubmitSuccess: true}
		}
		if edit == nil {
			return Decision{
				FinalSource:   models.FinalSourcePolite,
				NeedsPolite:   true,
				SubmitSuccess: true,
			}
		}
		if !edit.Over {
			return Decision{
				FinalSource:   models.FinalSourceUserEdit,
				WasEdited:     true,
				SubmitSuccess: true,
			}
		}
		// One edit was allowed and it failed the check: the polite
		// rendition is forced. The user's edit was not accepted, so
		// WasEdited stays false.
		return Decision{
			FinalSource:   models.FinalSourcePolite,
			NeedsPolite:   true,
			SubmitSuccess: true,
		}
	}
}
