package services

import (
	"testing"

	"game-platform/models"

	"github.com/shopspring/decimal"
)

func TestPurchaseGame(t *testing.T) {
	r := NewRegistry()
	w := NewWalletService(r)
	g := mustGame(t, r, "Quest", models.PlatformPC)
	u := mustAdult(t, r, "player")

	_, err := w.PurchaseGame(u.ID, g.ID)
	requireValidation(t, err) // no funds

	if _, err := w.AddBalance(u.ID, decimal.NewFromInt(15)); err != nil {
		t.Fatal(err)
	}
	_, err = w.AddBalance(u.ID, decimal.Zero)
	requireValidation(t, err)

	_ = w.SetPreferredPlatform(u.ID, models.PlatformMobile)
	_, err = w.PurchaseGame(u.ID, g.ID)
	requireValidation(t, err)
	if bal, _ := w.Balance(u.ID); !bal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("failed purchase changed the balance to %s", bal)
	}

	_ = w.SetPreferredPlatform(u.ID, "")
	owned, err := w.PurchaseGame(u.ID, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if owned.InstalledVersion != models.InitialVersion {
		t.Fatalf("installed version %s", owned.InstalledVersion)
	}
	if bal, _ := w.Balance(u.ID); !bal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected balance 5, got %s", bal)
	}

	_, err = w.PurchaseGame(u.ID, g.ID)
	requireValidation(t, err)
}

func TestPurchaseItem(t *testing.T) {
	r := NewRegistry()
	w := NewWalletService(r)
	g := mustGame(t, r, "Quest")
	u := mustAdult(t, r, "player")
	if err := w.AddStoreItem(g.ID, "Ponto_Extra", decimal.RequireFromString("2.50")); err != nil {
		t.Fatal(err)
	}
	requireValidation(t, w.AddStoreItem(g.ID, "Broken", decimal.NewFromInt(-1)))

	_, _ = w.AddBalance(u.ID, decimal.NewFromInt(15))
	_, err := w.PurchaseItem(u.ID, g.ID, "Ponto_Extra")
	requireValidation(t, err) // does not own the game

	if _, err := w.PurchaseGame(u.ID, g.ID); err != nil {
		t.Fatal(err)
	}
	_, err = w.PurchaseItem(u.ID, g.ID, "Missing")
	requireValidation(t, err)

	for _, want := range []string{"2.5", "0"} {
		bal, err := w.PurchaseItem(u.ID, g.ID, "Ponto_Extra")
		if err != nil {
			t.Fatal(err)
		}
		if !bal.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("expected balance %s, got %s", want, bal)
		}
	}
	_, err = w.PurchaseItem(u.ID, g.ID, "Ponto_Extra")
	requireValidation(t, err)
}

func TestStoreItemsIsCopy(t *testing.T) {
	r := NewRegistry()
	w := NewWalletService(r)
	g := mustGame(t, r, "Quest")
	_ = w.AddStoreItem(g.ID, "Skin", decimal.NewFromInt(3))

	items, _ := w.StoreItems(g.ID)
	items["Skin"] = decimal.Zero
	items["Free"] = decimal.Zero

	again, _ := w.StoreItems(g.ID)
	if len(again) != 1 || !again["Skin"].Equal(decimal.NewFromInt(3)) {
		t.Fatalf("store mutated through returned map: %v", again)
	}
}

func TestDebitNeverGoesNegative(t *testing.T) {
	r := NewRegistry()
	w := NewWalletService(r)
	u := mustAdult(t, r, "player")
	_, _ = w.AddBalance(u.ID, decimal.NewFromInt(5))

	_, err := w.Debit(u.ID, decimal.NewFromInt(6))
	requireValidation(t, err)
	bal, err := w.Debit(u.ID, decimal.NewFromInt(5))
	if err != nil || !bal.IsZero() {
		t.Fatalf("debit to zero: bal=%s err=%v", bal, err)
	}
}

func TestSetPreferences(t *testing.T) {
	r := NewRegistry()
	w := NewWalletService(r)
	u := mustAdult(t, r, "player")

	prefs, err := w.SetPreferences(u.ID, " RPG, ,Adventure ")
	if err != nil {
		t.Fatal(err)
	}
	if len(prefs) != 2 || prefs[0] != "RPG" || prefs[1] != "Adventure" {
		t.Fatalf("unexpected preferences %v", prefs)
	}
	requireValidation(t, w.SetPreferredPlatform(u.ID, "Fridge"))
}
