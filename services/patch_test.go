package services

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.9.0", "1.10.0", -1},
		{"v2.0.0", "1.99.99", 1},
		{"1.0.0-beta", "1.0.0", -1},
	}
	for _, tt := range tests {
		if got := CompareVersions(tt.a, tt.b); got != tt.want {
			t.Fatalf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPublishIsStrictlyMonotonic(t *testing.T) {
	r := NewRegistry()
	g := mustGame(t, r, "Quest")
	svc := NewPatchService(r)

	for i, v := range []string{"1.1.0", "1.2.0", "1.10.0"} {
		n, note, err := svc.Publish(g.ID, v, "notes "+v)
		if err != nil {
			t.Fatalf("publish %s: %v", v, err)
		}
		if n != i+1 || note.Sequence != i+1 || note.Version != v {
			t.Fatalf("publish %s: n=%d note=%+v", v, n, note)
		}
	}

	for _, v := range []string{"1.10.0", "1.9.0", "1.0.0", "banana", ""} {
		_, _, err := svc.Publish(g.ID, v, "rejected")
		requireValidation(t, err)
	}

	list, err := svc.List(g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 patches, got %d", len(list))
	}
	for i, want := range []string{"1.1.0", "1.2.0", "1.10.0"} {
		if list[i].Version != want {
			t.Fatalf("patch %d: expected %s, got %s", i, want, list[i].Version)
		}
	}
	game, _ := r.Game(g.ID)
	if game.CurrentVersion != "1.10.0" {
		t.Fatalf("current version %s", game.CurrentVersion)
	}
}

func TestPublishAcceptsLeadingV(t *testing.T) {
	r := NewRegistry()
	g := mustGame(t, r, "Quest")
	svc := NewPatchService(r)

	_, note, err := svc.Publish(g.ID, "v1.0.1", "hotfix")
	if err != nil {
		t.Fatal(err)
	}
	if note.Version != "1.0.1" {
		t.Fatalf("expected stored version 1.0.1, got %s", note.Version)
	}
	_, _, err = svc.Publish(g.ID, "1.0.1", "again")
	requireValidation(t, err)
}

func TestListReturnsCopy(t *testing.T) {
	r := NewRegistry()
	g := mustGame(t, r, "Quest")
	svc := NewPatchService(r)
	if _, _, err := svc.Publish(g.ID, "1.1.0", "original"); err != nil {
		t.Fatal(err)
	}

	list, _ := svc.List(g.ID)
	list[0].Notes = "tampered"

	again, _ := svc.List(g.ID)
	if len(again) != 1 || again[0].Notes != "original" {
		t.Fatalf("ledger mutated through returned view: %+v", again)
	}
}

func TestApplyUpdate(t *testing.T) {
	p, admin, _ := newTestPlatform(t)
	r := p.Registry()
	g := mustGame(t, r, "Quest")
	u := mustAdult(t, r, "player")
	stranger := mustAdult(t, r, "stranger")
	mustOwn(t, p, u.ID, g.ID)

	res, err := p.ApplyUpdate(u.ID, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated {
		t.Fatalf("already current, expected no-op: %+v", res)
	}

	if _, err := p.PublishPatch(admin, g.ID, "1.1.0", "balance changes"); err != nil {
		t.Fatal(err)
	}
	res, err = p.ApplyUpdate(u.ID, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Updated || res.From != "1.0.0" || res.To != "1.1.0" {
		t.Fatalf("unexpected update result: %+v", res)
	}
	user, _ := r.User(u.ID)
	if got := user.Library[g.ID].InstalledVersion; got != "1.1.0" {
		t.Fatalf("installed version %s", got)
	}

	_, err = p.ApplyUpdate(stranger.ID, g.ID)
	requireValidation(t, err)
}

func TestPublishPatchRequiresAdmin(t *testing.T) {
	p, _, _ := newTestPlatform(t)
	g := mustGame(t, p.Registry(), "Quest")
	u := mustAdult(t, p.Registry(), "player")

	_, err := p.PublishPatch(Caller{UserID: u.ID}, g.ID, "1.1.0", "sneaky")
	requireValidation(t, err)
	if list, _ := p.ListPatches(g.ID); len(list) != 0 {
		t.Fatalf("unauthorized publish changed the ledger: %+v", list)
	}
}
