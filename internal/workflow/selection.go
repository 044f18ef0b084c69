package workflow

// Selection holds which outputs the user wants from a generation run.
type Selection struct {
	Bride      bool
	Groom      bool
	Couple     bool
	Invitation bool
}

// Availability is a snapshot of which options the current inputs can support.
// Couple is derived: both headshots, or a couple photo.
type Availability struct {
	Bride       bool
	Groom       bool
	CouplePhoto bool
	Couple      bool
}

// AvailabilityOf derives the availability snapshot from the input slots.
func AvailabilityOf(inputs *SourceInputs) Availability {
	bride := inputs.Has(SlotBride)
	groom := inputs.Has(SlotGroom)
	couplePhoto := inputs.Has(SlotCouplePhoto)
	return Availability{
		Bride:       bride,
		Groom:       groom,
		CouplePhoto: couplePhoto,
		Couple:      (bride && groom) || couplePhoto,
	}
}

// Reconcile adjusts a selection after input availability changed. An option
// that just became available is auto-enabled; an option whose prerequisite
// disappeared is force-disabled. Pure function: callers pass the previous and
// current availability snapshots and replace their selection with the result.
//
// The invariant this maintains: a selection flag is never true while its
// prerequisite is false.
func Reconcile(sel Selection, prev, cur Availability) Selection {
	next := sel

	if !prev.Bride && cur.Bride {
		next.Bride = true
	}
	if !prev.Groom && cur.Groom {
		next.Groom = true
	}
	if !prev.Couple && cur.Couple {
		next.Couple = true
	}
	if !prev.CouplePhoto && cur.CouplePhoto {
		next.Couple = true
	}

	if !cur.Bride {
		next.Bride = false
	}
	if !cur.Groom {
		next.Groom = false
	}
	if !cur.Couple {
		next.Couple = false
	}

	return next
}

// GenerateBlocked reports whether a generation run cannot start: nothing
// selected, or a selected output's prerequisite input is missing.
func GenerateBlocked(sel Selection, inputs *SourceInputs) bool {
	if !sel.Bride && !sel.Groom && !sel.Couple {
		return true
	}
	avail := AvailabilityOf(inputs)
	if sel.Bride && !avail.Bride {
		return true
	}
	if sel.Groom && !avail.Groom {
		return true
	}
	if sel.Couple && !avail.Couple {
		return true
	}
	if sel.Invitation && !inputs.Has(SlotBackground) {
		return true
	}
	return false
}
