package gallery

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smenon/wedding-illustrator/internal/imaging"
)

func testImageBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func testVersion(t *testing.T, title string, quality float64) Version {
	t.Helper()
	raw := testImageBytes(t, 64, 48)
	encoded, err := imaging.Reencode(raw, quality, imaging.FormatPNG)
	if err != nil {
		t.Fatalf("reencode: %v", err)
	}
	return NewVersion(title, raw, "image/png", encoded, quality)
}

func TestKindTitles(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindBride, "Bride Illustration"},
		{KindGroom, "Groom Illustration"},
		{KindCouple, "Couple Illustration"},
		{KindInvitation, "Final Wedding Invitation"},
	}
	for _, tc := range tests {
		if got := tc.kind.Title(); got != tc.want {
			t.Errorf("%s title: got %q, want %q", tc.kind, got, tc.want)
		}
	}
	if KindInvitation.IsIllustration() {
		t.Error("invitation is not an illustration")
	}
	if !KindCouple.IsIllustration() {
		t.Error("couple is an illustration")
	}
}

func TestAppendVersionMovesCursor(t *testing.T) {
	store := NewStore()
	a := NewArtifact(KindBride, testVersion(t, "Bride Illustration", 0.9))
	store.Add(a)

	store.AppendVersion(a.ID, testVersion(t, "Bride Illustration V2", 0.9))
	store.AppendVersion(a.ID, testVersion(t, "Bride Illustration V3", 0.9))

	got, ok := store.Get(a.ID)
	if !ok {
		t.Fatal("artifact not found")
	}
	if len(got.Versions) != 3 {
		t.Fatalf("versions: got %d, want 3", len(got.Versions))
	}
	if got.CurrentIndex != 2 {
		t.Errorf("cursor: got %d, want 2", got.CurrentIndex)
	}
	if got.CurrentVersion().Title != "Bride Illustration V3" {
		t.Errorf("current title: %q", got.CurrentVersion().Title)
	}
}

func TestAppendVersionUnknownIDIsNoop(t *testing.T) {
	store := NewStore()
	store.AppendVersion("bride-gone", testVersion(t, "x", 0.9))
	if n := len(store.List()); n != 0 {
		t.Errorf("store should stay empty, has %d artifacts", n)
	}
}

func TestNavigateClampsAtBounds(t *testing.T) {
	store := NewStore()
	a := NewArtifact(KindGroom, testVersion(t, "Groom Illustration", 0.9))
	store.Add(a)
	store.AppendVersion(a.ID, testVersion(t, "Groom Illustration V2", 0.9))

	if idx := store.Navigate(a.ID, Next); idx != 1 {
		t.Errorf("next at end: got %d, want 1", idx)
	}
	if idx := store.Navigate(a.ID, Prev); idx != 0 {
		t.Errorf("prev: got %d, want 0", idx)
	}
	if idx := store.Navigate(a.ID, Prev); idx != 0 {
		t.Errorf("prev at start: got %d, want 0", idx)
	}
	if idx := store.Navigate(a.ID, Next); idx != 1 {
		t.Errorf("next: got %d, want 1", idx)
	}
	if idx := store.Navigate("missing", Next); idx != -1 {
		t.Errorf("unknown id: got %d, want -1", idx)
	}
}

func TestResetClearsEverything(t *testing.T) {
	store := NewStore()
	store.Add(NewArtifact(KindBride, testVersion(t, "Bride Illustration", 0.9)))
	store.SetFinal(NewArtifact(KindInvitation, testVersion(t, "Final Wedding Invitation", 0.95)))

	store.Reset()

	if n := len(store.List()); n != 0 {
		t.Errorf("gallery should be empty, has %d", n)
	}
	if _, ok := store.Final(); ok {
		t.Error("final slot should be empty after reset")
	}
}

func TestFinalSlotReplaces(t *testing.T) {
	store := NewStore()
	first := NewArtifact(KindInvitation, testVersion(t, "Final Wedding Invitation", 0.95))
	second := NewArtifact(KindInvitation, testVersion(t, "Final Wedding Invitation", 0.95))
	store.SetFinal(first)
	store.SetFinal(second)

	got, ok := store.Final()
	if !ok || got.ID != second.ID {
		t.Errorf("final slot should hold the latest artifact: ok=%v id=%s", ok, got.ID)
	}
	if _, ok := store.Get(second.ID); !ok {
		t.Error("Get should also find the final artifact")
	}
}

func TestSetQualityReencodesOnlyTarget(t *testing.T) {
	store := NewStore()
	a := NewArtifact(KindCouple, testVersion(t, "Couple Illustration", 0.9))
	store.Add(a)
	store.AppendVersion(a.ID, testVersion(t, "Couple Illustration V2", 0.9))

	before, _ := store.Get(a.ID)

	done := make(chan error, 1)
	store.SetQuality(a.ID, 0, 0.5, func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SetQuality: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("quality re-encode did not complete")
	}

	after, _ := store.Get(a.ID)
	if after.Versions[0].Quality != 0.5 {
		t.Errorf("quality: got %v, want 0.5", after.Versions[0].Quality)
	}
	if !bytes.Equal(after.Versions[0].Image.RawBytes, before.Versions[0].Image.RawBytes) {
		t.Error("raw bytes must never change on a quality edit")
	}
	if !bytes.Equal(after.Versions[1].Image.EncodedBytes, before.Versions[1].Image.EncodedBytes) {
		t.Error("quality edit must not touch other versions")
	}
	if len(after.Versions) != 2 || after.CurrentIndex != before.CurrentIndex {
		t.Error("quality edit must not change version count or cursor")
	}
}

func TestSetQualityRecordsFactorSynchronously(t *testing.T) {
	store := NewStore()
	a := NewArtifact(KindBride, testVersion(t, "Bride Illustration", 0.9))
	store.Add(a)

	done := make(chan error, 1)
	store.SetQuality(a.ID, 0, 0.3, func(err error) { done <- err })

	// The factor is visible before the background re-encode lands.
	got, _ := store.Get(a.ID)
	if got.Versions[0].Quality != 0.3 {
		t.Errorf("quality should be recorded synchronously, got %v", got.Versions[0].Quality)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SetQuality: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("quality re-encode did not complete")
	}
}

func TestSetQualityInvalidTargetsNoop(t *testing.T) {
	store := NewStore()
	a := NewArtifact(KindBride, testVersion(t, "Bride Illustration", 0.9))
	store.Add(a)

	for _, tc := range []struct {
		name string
		id   string
		idx  int
	}{
		{"unknown artifact", "missing", 0},
		{"negative index", a.ID, -1},
		{"index past end", a.ID, 5},
	} {
		done := make(chan error, 1)
		store.SetQuality(tc.id, tc.idx, 0.5, func(err error) { done <- err })
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("%s: unexpected error %v", tc.name, err)
			}
		case <-time.After(time.Second):
			t.Errorf("%s: done callback never fired", tc.name)
		}
	}

	got, _ := store.Get(a.ID)
	if got.Versions[0].Quality != 0.9 {
		t.Errorf("quality should be untouched, got %v", got.Versions[0].Quality)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewStore()
	a := NewArtifact(KindBride, testVersion(t, "Bride Illustration", 0.9))
	store.Add(a)

	snap, _ := store.Get(a.ID)
	store.AppendVersion(a.ID, testVersion(t, "Bride Illustration V2", 0.9))

	if len(snap.Versions) != 1 {
		t.Error("snapshot should not grow when the store mutates")
	}
	live, _ := store.Get(a.ID)
	if len(live.Versions) != 2 {
		t.Error("store should have the appended version")
	}
}

func TestDownloadNamesFileFromTitleAndVersion(t *testing.T) {
	store := NewStore()
	a := NewArtifact(KindCouple, testVersion(t, "Couple Illustration", 0.9))
	store.Add(a)
	store.AppendVersion(a.ID, testVersion(t, "Couple Illustration V2", 0.9))

	dir := t.TempDir()
	path, err := store.Download(a.ID, dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if got := filepath.Base(path); got != "couple-illustration-v2-v2.png" {
		t.Errorf("file name: got %q", got)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if len(data) == 0 {
		t.Error("downloaded file is empty")
	}
}

func TestDownloadUnknownArtifact(t *testing.T) {
	store := NewStore()
	if _, err := store.Download("missing", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown artifact")
	}
}

func TestSlugify(t *testing.T) {
	if got := slugify("Final Wedding Invitation"); got != "final-wedding-invitation" {
		t.Errorf("slugify: %q", got)
	}
	if !strings.HasPrefix(NewArtifact(KindBride, testVersion(t, "x", 0.9)).ID, "bride-") {
		t.Error("artifact IDs should be prefixed with their kind")
	}
}
