package services

import (
	"math"
	"testing"

	"game-platform/models"
)

func codes(as []models.Achievement) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.Code)
	}
	return out
}

func TestEvaluateUnlocksByThresholdOnce(t *testing.T) {
	r := NewRegistry()
	quest := mustGame(t, r, "Quest")
	u := mustAdult(t, r, "player")
	svc := NewAchievementService(r)

	for _, a := range []models.Achievement{
		{Code: "HUNDRED", Threshold: 100},
		{Code: "FIFTY", Threshold: 50},
	} {
		if _, err := svc.Define(quest.ID, a); err != nil {
			t.Fatalf("define %s: %v", a.Code, err)
		}
	}

	got, err := svc.Evaluate(u.ID, quest.ID, 75, Passthrough{})
	if err != nil {
		t.Fatal(err)
	}
	if c := codes(got); len(c) != 1 || c[0] != "FIFTY" {
		t.Fatalf("score 75: expected [FIFTY], got %v", c)
	}

	got, err = svc.Evaluate(u.ID, quest.ID, 120, Passthrough{})
	if err != nil {
		t.Fatal(err)
	}
	if c := codes(got); len(c) != 1 || c[0] != "HUNDRED" {
		t.Fatalf("score 120: expected [HUNDRED], got %v", c)
	}

	for _, score := range []int64{120, 10, 500} {
		got, err := svc.Evaluate(u.ID, quest.ID, score, Passthrough{})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Fatalf("score %d re-returned %v", score, codes(got))
		}
	}

	user, _ := r.User(u.ID)
	if !user.HasUnlocked(quest.ID, "FIFTY") || !user.HasUnlocked(quest.ID, "HUNDRED") {
		t.Fatalf("unlocked set lost entries: %v", user.Unlocked)
	}
}

func TestEvaluateUnlocksAllQualifyingInThresholdOrder(t *testing.T) {
	r := NewRegistry()
	g := mustGame(t, r, "Ladder")
	u := mustAdult(t, r, "climber")
	svc := NewAchievementService(r)
	for _, a := range []models.Achievement{
		{Code: "C", Threshold: 30},
		{Code: "A", Threshold: 10},
		{Code: "B", Threshold: 20},
		{Code: "D", Threshold: 40},
	} {
		if _, err := svc.Define(g.ID, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.Evaluate(u.ID, g.ID, 35, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A", "B", "C"}
	c := codes(got)
	if len(c) != len(want) {
		t.Fatalf("expected %v, got %v", want, c)
	}
	for i := range want {
		if c[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, c)
		}
	}
}

func TestEvaluateBonusStrategy(t *testing.T) {
	r := NewRegistry()
	g := mustGame(t, r, "Quest")
	u := mustAdult(t, r, "player")
	svc := NewAchievementService(r)
	if _, err := svc.Define(g.ID, models.Achievement{Code: "HUNDRED", Threshold: 100}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Evaluate(u.ID, g.ID, 60, Passthrough{})
	if err != nil || len(got) != 0 {
		t.Fatalf("passthrough 60: got %v err %v", codes(got), err)
	}
	got, err = svc.Evaluate(u.ID, g.ID, 60, BonusMultiplier{Factor: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("bonus 60x2: expected unlock, got %v", codes(got))
	}
}

func TestBonusScoreSaturatesInsteadOfWrapping(t *testing.T) {
	r := NewRegistry()
	g := mustGame(t, r, "Quest")
	u := mustAdult(t, r, "player")
	svc := NewAchievementService(r)
	if _, err := svc.Define(g.ID, models.Achievement{Code: "ANY", Threshold: 0}); err != nil {
		t.Fatal(err)
	}

	bonus := BonusMultiplier{Factor: 2}
	if got := bonus.EffectiveScore(math.MaxInt64); got != math.MaxInt64 {
		t.Fatalf("expected MaxInt64, got %d", got)
	}
	got, err := svc.Evaluate(u.ID, g.ID, math.MaxInt64, bonus)
	if err != nil {
		t.Fatal(err)
	}
	if c := codes(got); len(c) != 1 || c[0] != "ANY" {
		t.Fatalf("expected [ANY] for a saturated score, got %v", c)
	}
}

func TestEvaluateEdgeCases(t *testing.T) {
	r := NewRegistry()
	empty := mustGame(t, r, "Empty")
	u := mustAdult(t, r, "player")
	svc := NewAchievementService(r)

	got, err := svc.Evaluate(u.ID, empty.ID, 1000, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("game without achievements: got %v err %v", got, err)
	}

	_, err = svc.Evaluate(u.ID, empty.ID, -1, nil)
	requireValidation(t, err)

	_, err = svc.Evaluate("nobody", empty.ID, 10, nil)
	requireValidation(t, err)

	_, err = svc.Evaluate(u.ID, "missing", 10, nil)
	requireValidation(t, err)
}

func TestDefineAchievementValidation(t *testing.T) {
	r := NewRegistry()
	g := mustGame(t, r, "Quest")
	svc := NewAchievementService(r)

	if _, err := svc.Define(g.ID, models.Achievement{Code: "P100", Threshold: 100}); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		a    models.Achievement
	}{
		{"missing code", models.Achievement{Threshold: 1}},
		{"negative threshold", models.Achievement{Code: "NEG", Threshold: -1}},
		{"duplicate code", models.Achievement{Code: "P100", Threshold: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Define(g.ID, tt.a)
			requireValidation(t, err)
		})
	}

	stored, err := svc.Define(g.ID, models.Achievement{Code: "  P5  ", Title: "  ", Threshold: 5})
	if err != nil {
		t.Fatal(err)
	}
	if stored.Code != "P5" || stored.Title != "P5" {
		t.Fatalf("expected normalized achievement, got %+v", stored)
	}

	list, err := svc.Achievements(g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[1].Threshold != 100 || list[1].Title != "P100" {
		t.Fatalf("duplicate replaced the original: %+v", list)
	}
}

func TestStrategyByName(t *testing.T) {
	tests := []struct {
		name    string
		factor  float64
		raw     int64
		want    int64
		wantErr bool
	}{
		{"", 0, 42, 42, false},
		{"passthrough", 3, 42, 42, false},
		{"bonus", 1.5, 41, 61, false},
		{"BONUS", 2, 10, 20, false},
		{"bonus", 0, 10, 0, true},
		{"bonus", math.NaN(), 10, 0, true},
		{"bonus", math.Inf(1), 10, 0, true},
		{"lottery", 1, 10, 0, true},
	}
	for _, tt := range tests {
		s, err := StrategyByName(tt.name, tt.factor)
		if tt.wantErr {
			requireValidation(t, err)
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.name, err)
		}
		if got := s.EffectiveScore(tt.raw); got != tt.want {
			t.Fatalf("%q x%v: expected %d, got %d", tt.name, tt.factor, tt.want, got)
		}
	}
}

func TestRankingOrdersByPointsThenName(t *testing.T) {
	r := NewRegistry()
	g := mustGame(t, r, "Quest")
	zed := mustAdult(t, r, "zed")
	amy := mustAdult(t, r, "amy")
	bob := mustAdult(t, r, "bob")
	svc := NewAchievementService(r)

	for _, s := range []struct {
		id  string
		pts int64
	}{{zed.ID, 50}, {amy.ID, 50}, {bob.ID, 70}, {amy.ID, 0}} {
		if _, err := svc.AddPoints(s.id, g.ID, s.pts); err != nil {
			t.Fatal(err)
		}
	}
	_, err := svc.AddPoints(bob.ID, g.ID, -1)
	requireValidation(t, err)

	ranking, err := svc.Ranking(g.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"bob", "amy", "zed"}
	if len(ranking) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), ranking)
	}
	for i, e := range ranking {
		if e.Name != want[i] || e.Position != i+1 {
			t.Fatalf("position %d: expected %s, got %+v", i+1, want[i], e)
		}
	}
}

func TestUserAchievementsMarksUnlocked(t *testing.T) {
	r := NewRegistry()
	g := mustGame(t, r, "Quest")
	u := mustAdult(t, r, "player")
	svc := NewAchievementService(r)
	_, _ = svc.Define(g.ID, models.Achievement{Code: "LOW", Threshold: 1})
	_, _ = svc.Define(g.ID, models.Achievement{Code: "HIGH", Threshold: 1000})
	if _, err := svc.Evaluate(u.ID, g.ID, 5, nil); err != nil {
		t.Fatal(err)
	}

	list, err := svc.UserAchievements(u.ID, "Quest")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || !list[0].Unlocked || list[0].UnlockedAt == nil || list[1].Unlocked {
		t.Fatalf("unexpected status list: %+v", list)
	}
}
