package engine

import (
	"testing"

	"github.com/bobotu/kaosu-packer/internal/model"
)

func keepAll(model.Space) bool { return true }

func space(x1, y1, z1, x2, y2, z2 int) model.Space {
	return model.NewSpace(model.Point{X: x1, Y: y1, Z: z1}, model.Point{X: x2, Y: y2, Z: z2})
}

func TestAppendDifferencesProducesSixPieces(t *testing.T) {
	got := appendDifferences(nil, space(0, 0, 0, 4, 4, 4), space(1, 1, 1, 2, 2, 2), keepAll)

	want := []model.Space{
		space(0, 0, 0, 1, 4, 4), // below the overlap on X
		space(2, 0, 0, 4, 4, 4), // above on X
		space(0, 0, 0, 4, 1, 4), // below on Y
		space(0, 2, 0, 4, 4, 4), // above on Y
		space(0, 0, 0, 4, 4, 1), // below on Z
		space(0, 0, 2, 4, 4, 4), // above on Z
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("piece %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestAppendDifferencesDropsDegeneratePieces(t *testing.T) {
	// overlap flush with the space's min corner: the three low pieces
	// have zero extent and must disappear
	got := appendDifferences(nil, space(0, 0, 0, 4, 4, 4), space(0, 0, 0, 2, 2, 2), keepAll)

	want := []model.Space{
		space(2, 0, 0, 4, 4, 4),
		space(0, 2, 0, 4, 4, 4),
		space(0, 0, 2, 4, 4, 4),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("piece %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestAppendDifferencesAppliesKeepFilter(t *testing.T) {
	none := func(model.Space) bool { return false }
	if got := appendDifferences(nil, space(0, 0, 0, 4, 4, 4), space(1, 1, 1, 2, 2, 2), none); len(got) != 0 {
		t.Errorf("expected all pieces filtered, got %d", len(got))
	}
}

func TestContainedInAnother(t *testing.T) {
	big := space(0, 0, 0, 4, 4, 4)
	inner := space(1, 1, 1, 2, 2, 2)

	spaces := []model.Space{big, inner}
	if containedInAnother(spaces, 0) {
		t.Error("outer space wrongly dropped")
	}
	if !containedInAnother(spaces, 1) {
		t.Error("inner space should be dropped")
	}

	// equal twins: only the first survives
	twins := []model.Space{big, big}
	if containedInAnother(twins, 0) {
		t.Error("first twin should survive")
	}
	if !containedInAnother(twins, 1) {
		t.Error("second twin should be dropped")
	}
}

func TestBestSpacePrefersDeepestPlacement(t *testing.T) {
	corner := model.Point{X: 10, Y: 10, Z: 10}
	nearOrigin := space(0, 0, 0, 2, 2, 2)
	nearCorner := space(8, 8, 8, 10, 10, 10)
	box := model.NewDimension(1, 1, 1)

	b := bin{spaces: []model.Space{nearOrigin, nearCorner}}
	if got := b.bestSpace(box, corner); got != 0 {
		t.Errorf("expected the space farthest from the bin corner (0), got %d", got)
	}

	b = bin{spaces: []model.Space{nearCorner, nearOrigin}}
	if got := b.bestSpace(box, corner); got != 1 {
		t.Errorf("expected index 1 after swapping, got %d", got)
	}

	if got := b.bestSpace(model.NewDimension(3, 3, 3), corner); got != -1 {
		t.Errorf("expected -1 for a box fitting nowhere, got %d", got)
	}
}

func TestPlaceCarvesFreeSpace(t *testing.T) {
	a := newBinArena(model.NewDimension(4, 4, 4))
	idx := a.openNew()
	b := a.nth(idx)

	placed := b.place(0, model.NewDimension(2, 2, 2), keepAll)

	if placed != space(0, 0, 0, 2, 2, 2) {
		t.Fatalf("unexpected placement %+v", placed)
	}
	if b.used != 8 {
		t.Errorf("expected used volume 8, got %d", b.used)
	}

	want := []model.Space{
		space(2, 0, 0, 4, 4, 4),
		space(0, 2, 0, 4, 4, 4),
		space(0, 0, 2, 4, 4, 4),
	}
	if len(b.spaces) != len(want) {
		t.Fatalf("expected %d free spaces, got %d: %+v", len(want), len(b.spaces), b.spaces)
	}
	for i := range want {
		if b.spaces[i] != want[i] {
			t.Errorf("free space %d: expected %+v, got %+v", i, want[i], b.spaces[i])
		}
	}
}

func TestBinArenaReusesStorage(t *testing.T) {
	a := newBinArena(model.NewDimension(4, 4, 4))

	first := a.openNew()
	second := a.openNew()
	if first != 0 || second != 1 {
		t.Fatalf("expected bin indices 0 and 1, got %d and %d", first, second)
	}

	a.nth(first).place(0, model.NewDimension(4, 4, 4), keepAll)
	if got := a.leastLoad(); got != 0 {
		t.Errorf("least load should come from the empty bin, got %d", got)
	}

	a.reset()
	if a.open != 0 {
		t.Fatalf("reset should close every bin, %d still open", a.open)
	}

	reopened := a.openNew()
	b := a.nth(reopened)
	if b.used != 0 {
		t.Errorf("reopened bin kept volume %d", b.used)
	}
	if len(b.spaces) != 1 || b.spaces[0] != space(0, 0, 0, 4, 4, 4) {
		t.Errorf("reopened bin should hold the whole-bin space, got %+v", b.spaces)
	}
}
