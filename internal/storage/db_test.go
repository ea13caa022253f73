package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ramonehamilton/mtg-sorter/internal/cards"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "cache.db")))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenRunsMigrations(t *testing.T) {
	db := testDB(t)

	version, dirty, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if dirty {
		t.Fatal("schema is dirty after migration")
	}
	if version == 0 {
		t.Fatal("no migrations applied")
	}
}

func TestSetCardRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewSetCardRepository(db)
	ctx := context.Background()

	list := []*cards.Card{
		{ScryfallID: "id-b", SetCode: "KTK", Name: "Bear's Companion", Rarity: cards.RarityUncommon},
		{ScryfallID: "id-a", SetCode: "KTK", Name: "Abzan Banner", Rarity: cards.RarityCommon},
	}
	if err := repo.SaveCards(ctx, "KTK", list, time.Now()); err != nil {
		t.Fatalf("SaveCards() error = %v", err)
	}

	got, err := repo.CardsBySet(ctx, "KTK")
	if err != nil {
		t.Fatalf("CardsBySet() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d cards, want 2", len(got))
	}
	// Ordered by name.
	if got[0].Name != "Abzan Banner" || got[1].Name != "Bear's Companion" {
		t.Errorf("cards not ordered by name: %s, %s", got[0].Name, got[1].Name)
	}
	if got[0].Rarity != cards.RarityCommon {
		t.Errorf("rarity = %s, want common", got[0].Rarity)
	}
	// Catalog records come back as one owned, unsorted copy.
	if got[0].Quantity != 1 {
		t.Errorf("quantity = %d, want 1", got[0].Quantity)
	}
	if got[0].Sorted {
		t.Error("fresh card reported as sorted")
	}

	// Re-saving the same IDs replaces rather than duplicates.
	if err := repo.SaveCards(ctx, "KTK", list, time.Now()); err != nil {
		t.Fatalf("second SaveCards() error = %v", err)
	}
	got, err = repo.CardsBySet(ctx, "KTK")
	if err != nil {
		t.Fatalf("CardsBySet() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("after upsert got %d cards, want 2", len(got))
	}
}

func TestIsSetCached(t *testing.T) {
	db := testDB(t)
	repo := NewSetCardRepository(db)
	ctx := context.Background()

	cached, err := repo.IsSetCached(ctx, "KTK", time.Hour)
	if err != nil {
		t.Fatalf("IsSetCached() error = %v", err)
	}
	if cached {
		t.Fatal("empty cache reported as cached")
	}

	list := []*cards.Card{{ScryfallID: "id-a", SetCode: "KTK", Name: "Abzan Banner", Rarity: cards.RarityCommon}}
	if err := repo.SaveCards(ctx, "KTK", list, time.Now()); err != nil {
		t.Fatalf("SaveCards() error = %v", err)
	}

	cached, err = repo.IsSetCached(ctx, "KTK", time.Hour)
	if err != nil {
		t.Fatalf("IsSetCached() error = %v", err)
	}
	if !cached {
		t.Error("fresh cache reported as missing")
	}

	// Entries older than the TTL are treated as a miss.
	if err := repo.SaveCards(ctx, "OLD", list, time.Now().Add(-2*time.Hour)); err != nil {
		t.Fatalf("SaveCards() error = %v", err)
	}
	cached, err = repo.IsSetCached(ctx, "OLD", time.Hour)
	if err != nil {
		t.Fatalf("IsSetCached() error = %v", err)
	}
	if cached {
		t.Error("stale cache reported as fresh")
	}
}

func TestInventoryStateSurvivesRefresh(t *testing.T) {
	db := testDB(t)
	repo := NewSetCardRepository(db)
	ctx := context.Background()

	list := []*cards.Card{
		{ScryfallID: "id-a", SetCode: "KTK", Name: "Abzan Banner", Rarity: cards.RarityCommon},
		{ScryfallID: "id-b", SetCode: "KTK", Name: "Bear's Companion", Rarity: cards.RarityUncommon},
	}
	if err := repo.SaveCards(ctx, "KTK", list, time.Now()); err != nil {
		t.Fatalf("SaveCards() error = %v", err)
	}

	updated, err := repo.SetSorted(ctx, "KTK", "Abzan Banner", true)
	if err != nil {
		t.Fatalf("SetSorted() error = %v", err)
	}
	if !updated {
		t.Fatal("SetSorted() matched no card")
	}
	updated, err = repo.SetQuantity(ctx, "KTK", "Bear's Companion", 4)
	if err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}
	if !updated {
		t.Fatal("SetQuantity() matched no card")
	}

	// A catalog refresh must not clobber the user's inventory state.
	if err := repo.SaveCards(ctx, "KTK", list, time.Now()); err != nil {
		t.Fatalf("refresh SaveCards() error = %v", err)
	}

	got, err := repo.CardsBySet(ctx, "KTK")
	if err != nil {
		t.Fatalf("CardsBySet() error = %v", err)
	}
	if !got[0].Sorted {
		t.Error("sorted flag lost after refresh")
	}
	if got[1].Quantity != 4 {
		t.Errorf("quantity = %d after refresh, want 4", got[1].Quantity)
	}

	updated, err = repo.SetSorted(ctx, "KTK", "No Such Card", true)
	if err != nil {
		t.Fatalf("SetSorted() error = %v", err)
	}
	if updated {
		t.Error("SetSorted() reported a match for a missing card")
	}
}

func TestBoosterConfigRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewBoosterConfigRepository(db)
	ctx := context.Background()

	rec := BoosterConfigRecord{
		SetCode:   "KTK",
		RawJSON:   []byte(`{"booster":{"default":{}}}`),
		SourceSet: "KTK",
		FetchedAt: time.Now(),
	}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok, err := repo.Get(ctx, "KTK", time.Hour)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("saved config reported as miss")
	}
	if string(got.RawJSON) != string(rec.RawJSON) {
		t.Errorf("RawJSON = %s, want %s", got.RawJSON, rec.RawJSON)
	}
	if got.SourceSet != "KTK" {
		t.Errorf("SourceSet = %s, want KTK", got.SourceSet)
	}

	_, ok, err = repo.Get(ctx, "ZZZ", time.Hour)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("missing config reported as hit")
	}

	if err := repo.Delete(ctx, "KTK"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, ok, err = repo.Get(ctx, "KTK", time.Hour)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("deleted config reported as hit")
	}
}
