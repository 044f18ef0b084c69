package workflow

import (
	"testing"

	"github.com/smenon/wedding-illustrator/internal/gallery"
)

func inputsWith(slots ...Slot) *SourceInputs {
	inputs := NewSourceInputs()
	for _, slot := range slots {
		inputs.Set(slot, &gallery.ImageAsset{
			EncodedBytes: []byte("img-" + string(slot)),
			EncodedSize:  4,
			EncodedMIME:  "image/jpeg",
		})
	}
	return inputs
}

func TestAvailabilityOf(t *testing.T) {
	tests := []struct {
		name  string
		slots []Slot
		want  Availability
	}{
		{"empty", nil, Availability{}},
		{"bride only", []Slot{SlotBride}, Availability{Bride: true}},
		{"both headshots", []Slot{SlotBride, SlotGroom}, Availability{Bride: true, Groom: true, Couple: true}},
		{"couple photo only", []Slot{SlotCouplePhoto}, Availability{CouplePhoto: true, Couple: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := AvailabilityOf(inputsWith(tc.slots...)); got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestReconcileAutoEnablesNewOptions(t *testing.T) {
	prev := Availability{}
	cur := AvailabilityOf(inputsWith(SlotBride, SlotGroom))

	got := Reconcile(Selection{}, prev, cur)
	want := Selection{Bride: true, Groom: true, Couple: true}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReconcileCouplePhotoEnablesCouple(t *testing.T) {
	prev := Availability{}
	cur := AvailabilityOf(inputsWith(SlotCouplePhoto))

	got := Reconcile(Selection{}, prev, cur)
	if !got.Couple || got.Bride || got.Groom {
		t.Errorf("couple photo should enable only the couple output, got %+v", got)
	}
}

func TestReconcileForceDisablesUnavailable(t *testing.T) {
	prev := AvailabilityOf(inputsWith(SlotBride, SlotGroom))
	cur := AvailabilityOf(inputsWith(SlotBride))

	got := Reconcile(Selection{Bride: true, Groom: true, Couple: true}, prev, cur)
	want := Selection{Bride: true}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReconcileKeepsManualOptOut(t *testing.T) {
	avail := AvailabilityOf(inputsWith(SlotBride, SlotGroom))

	// Availability did not change, so a deselected option stays deselected.
	got := Reconcile(Selection{Bride: true, Groom: true}, avail, avail)
	if got.Couple {
		t.Error("reconcile must not re-enable an option the user turned off")
	}
}

func TestReconcileInvariant(t *testing.T) {
	avails := []Availability{
		{},
		{Bride: true},
		{Groom: true},
		{Bride: true, Groom: true, Couple: true},
		{CouplePhoto: true, Couple: true},
	}
	sels := []Selection{
		{},
		{Bride: true, Groom: true, Couple: true, Invitation: true},
		{Couple: true},
	}
	for _, prev := range avails {
		for _, cur := range avails {
			for _, sel := range sels {
				got := Reconcile(sel, prev, cur)
				if got.Bride && !cur.Bride {
					t.Errorf("bride selected without input: prev=%+v cur=%+v sel=%+v", prev, cur, sel)
				}
				if got.Groom && !cur.Groom {
					t.Errorf("groom selected without input: prev=%+v cur=%+v sel=%+v", prev, cur, sel)
				}
				if got.Couple && !cur.Couple {
					t.Errorf("couple selected without prerequisites: prev=%+v cur=%+v sel=%+v", prev, cur, sel)
				}
			}
		}
	}
}

func TestGenerateBlocked(t *testing.T) {
	tests := []struct {
		name  string
		sel   Selection
		slots []Slot
		want  bool
	}{
		{"nothing selected", Selection{}, []Slot{SlotBride}, true},
		{"bride ready", Selection{Bride: true}, []Slot{SlotBride}, false},
		{"bride missing input", Selection{Bride: true}, nil, true},
		{"couple via photo", Selection{Couple: true}, []Slot{SlotCouplePhoto}, false},
		{"couple via headshots", Selection{Couple: true}, []Slot{SlotBride, SlotGroom}, false},
		{"couple unsupported", Selection{Couple: true}, []Slot{SlotBride}, true},
		{"invitation without background", Selection{Bride: true, Invitation: true}, []Slot{SlotBride}, true},
		{"invitation with background", Selection{Bride: true, Invitation: true}, []Slot{SlotBride, SlotBackground}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GenerateBlocked(tc.sel, inputsWith(tc.slots...)); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
