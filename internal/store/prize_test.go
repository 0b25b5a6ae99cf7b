package store

import "testing"

func TestPrizeCRUD(t *testing.T) {
	ps := NewPrizeStore(setupTestDB(t))

	prize, err := ps.Create("Pizza", 30, false)
	if err != nil {
		t.Fatalf("create prize: %v", err)
	}
	if prize.Name != "Pizza" || prize.Cost != 30 || prize.IsBuiltin {
		t.Errorf("prize = %+v", prize)
	}

	updated, err := ps.Update(prize.ID, "Large Pizza", 40)
	if err != nil {
		t.Fatalf("update prize: %v", err)
	}
	if updated.Name != "Large Pizza" || updated.Cost != 40 {
		t.Errorf("updated = %+v", updated)
	}

	ok, err := ps.Delete(prize.ID)
	if err != nil {
		t.Fatalf("delete prize: %v", err)
	}
	if !ok {
		t.Error("expected delete to report a removed row")
	}
	got, err := ps.GetByID(prize.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestPrizeCostMustBePositive(t *testing.T) {
	ps := NewPrizeStore(setupTestDB(t))

	if _, err := ps.Create("Free", 0, false); err == nil {
		t.Error("expected check constraint error for zero cost")
	}
}

func TestPrizeListAndCount(t *testing.T) {
	ps := NewPrizeStore(setupTestDB(t))

	ps.Create("Movie Night", 25, true)
	ps.Create("Ice Cream", 10, true)

	n, err := ps.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	prizes, err := ps.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(prizes) != 2 || prizes[0].Name != "Movie Night" || !prizes[0].IsBuiltin {
		t.Errorf("prizes = %+v", prizes)
	}

	if _, err := ps.DeleteAll(); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	n, _ = ps.Count()
	if n != 0 {
		t.Errorf("count after delete all = %d, want 0", n)
	}
}
