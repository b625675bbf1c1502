package main

import "testing"

func humanSettings() GameSettings {
	return GameSettings{
		WhiteType:   PlayerHuman,
		BlackType:   PlayerHuman,
		InitialSide: White,
	}
}

func TestApplyHumanMoveHappyPath(t *testing.T) {
	gc := NewGameController(humanSettings())
	gc.StartGame(humanSettings())
	if ok, reason := gc.ApplyHumanMove("c2-c3"); !ok {
		t.Fatalf("opening move rejected: %s", reason)
	}
	state := gc.State()
	if state.LastMove != "c2-c3" || state.MoveCount != 1 {
		t.Fatalf("state after move: %+v", state)
	}
	if state.ToMove != Black {
		t.Fatalf("turn did not pass to Black")
	}
}

func TestApplyHumanMoveRejectsBadInput(t *testing.T) {
	gc := NewGameController(humanSettings())
	gc.StartGame(humanSettings())
	if ok, reason := gc.ApplyHumanMove("zz-9"); ok || reason == "" {
		t.Fatalf("garbage notation must fail with a reason")
	}
	if ok, reason := gc.ApplyHumanMove("c4-c3"); ok || reason == "" {
		t.Fatalf("moving the opponent's piece must fail with a reason")
	}
}

func TestApplyHumanMoveEnforcesForcedCapture(t *testing.T) {
	gc := NewGameController(humanSettings())
	gc.StartGame(humanSettings())
	if ok, _ := gc.ApplyHumanMove("c2-c3"); !ok {
		t.Fatalf("c2-c3 rejected")
	}
	// Black now has a capture and may not step.
	if ok, reason := gc.ApplyHumanMove("b4-b3"); ok {
		t.Fatalf("step allowed while a capture exists")
	} else if reason == "" {
		t.Fatalf("rejection needs a reason")
	}
	if ok, reason := gc.ApplyHumanMove("c4-c2"); !ok {
		t.Fatalf("forced capture rejected: %s", reason)
	}
	entry, ok := gc.LatestHistoryEntry()
	if !ok {
		t.Fatalf("history empty after two moves")
	}
	if entry.Player != Black || entry.CapturedCount != 1 || entry.IsAi {
		t.Fatalf("history entry wrong: %+v", entry)
	}
}

func TestApplyHumanMoveRefusesAITurn(t *testing.T) {
	settings := humanSettings()
	settings.WhiteType = PlayerAI
	gc := NewGameController(settings)
	gc.StartGame(settings)
	if ok, reason := gc.ApplyHumanMove("c2-c3"); ok || reason != "not human turn" {
		t.Fatalf("expected the AI's turn to be protected, got %v %q", ok, reason)
	}
}

func TestTickAppliesPendingHumanMove(t *testing.T) {
	g := NewGame(humanSettings())
	g.Start()
	if g.Tick() {
		t.Fatalf("nothing pending, Tick must be a no-op")
	}
	if !g.SubmitHumanMove(mustParseMove(t, "c2-c3")) {
		t.Fatalf("pending move rejected")
	}
	if !g.Tick() {
		t.Fatalf("Tick did not apply the pending move")
	}
	if state := g.State(); state.MoveCount != 1 || state.LastMove != "c2-c3" {
		t.Fatalf("state after tick: %+v", state)
	}
}

func TestSetupReplacesPosition(t *testing.T) {
	gc := NewGameController(humanSettings())
	gc.StartGame(humanSettings())
	if err := gc.Setup("-bw--bb------------------", White); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	state := gc.State()
	if state.Status != StatusRunning || state.MoveCount != 0 {
		t.Fatalf("setup state: %+v", state)
	}
	if ok, reason := gc.ApplyHumanMove("c1-a1-a3-c1"); !ok {
		t.Fatalf("winning chain rejected: %s", reason)
	}
	state = gc.State()
	if state.Status != StatusWhiteWon || state.Winner != White {
		t.Fatalf("wiping Black out should end the game: %+v", state)
	}
	if ok, reason := gc.ApplyHumanMove("a3-a4"); ok || reason == "" {
		t.Fatalf("moves after the end must be rejected with a reason")
	}
}

func TestSetupRejectsBadLayout(t *testing.T) {
	gc := NewGameController(humanSettings())
	gc.StartGame(humanSettings())
	before := gc.State()
	if err := gc.Setup("not a layout", White); err == nil {
		t.Fatalf("bad layout accepted")
	}
	after := gc.State()
	if after.Layout != before.Layout || after.Status != before.Status {
		t.Fatalf("failed setup changed the game")
	}
}

func TestSetupDetectsImmediateLoss(t *testing.T) {
	gc := NewGameController(humanSettings())
	gc.StartGame(humanSettings())
	// White to move with no pieces at all.
	if err := gc.Setup("b------------------------", White); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	state := gc.State()
	if state.Status != StatusBlackWon || state.Winner != Black {
		t.Fatalf("White cannot act and must lose: %+v", state)
	}
}

func TestHintReturnsLegalMove(t *testing.T) {
	old := GetConfig()
	cfg := old
	cfg.AiDepth = 2
	configStore.Update(cfg)
	t.Cleanup(func() { configStore.Update(old) })

	gc := NewGameController(humanSettings())
	gc.StartGame(humanSettings())
	hint, ok := gc.Hint()
	if !ok {
		t.Fatalf("no hint for the opening position")
	}
	for _, legal := range gc.LegalMoves() {
		if legal == hint {
			return
		}
	}
	t.Fatalf("hint %q is not a legal move", hint)
}

func TestUpdateSettingsWithoutResetKeepsPosition(t *testing.T) {
	gc := NewGameController(humanSettings())
	gc.StartGame(humanSettings())
	if ok, _ := gc.ApplyHumanMove("c2-c3"); !ok {
		t.Fatalf("opening move rejected")
	}
	update := humanSettings()
	update.BlackType = PlayerAI
	gc.UpdateSettings(update, false)
	if state := gc.State(); state.MoveCount != 1 {
		t.Fatalf("settings update without reset lost the position")
	}
	if gc.Settings().BlackType != PlayerAI {
		t.Fatalf("settings not applied")
	}
}

func TestSettingsDTOMapping(t *testing.T) {
	base := DefaultGameSettings()
	cases := []struct {
		dto   GameSettingsDTO
		white PlayerType
		black PlayerType
	}{
		{GameSettingsDTO{Mode: "ai_vs_ai"}, PlayerAI, PlayerAI},
		{GameSettingsDTO{Mode: "human_vs_human"}, PlayerHuman, PlayerHuman},
		{GameSettingsDTO{Mode: "ai_vs_human", HumanPlayer: 1}, PlayerHuman, PlayerAI},
		{GameSettingsDTO{Mode: "ai_vs_human", HumanPlayer: 2}, PlayerAI, PlayerHuman},
	}
	for _, c := range cases {
		settings := settingsFromDTO(c.dto, base)
		if settings.WhiteType != c.white || settings.BlackType != c.black {
			t.Fatalf("mode %q player %d mapped to %v/%v", c.dto.Mode, c.dto.HumanPlayer, settings.WhiteType, settings.BlackType)
		}
		back := controllerSettingsDTO(settings)
		if back.Mode != c.dto.Mode {
			t.Fatalf("mode %q did not round trip, got %q", c.dto.Mode, back.Mode)
		}
	}
}

func TestWinnerStringOnlyForDecidedGames(t *testing.T) {
	if got := winnerString(GameState{Status: StatusRunning, Winner: Empty}); got != "" {
		t.Fatalf("running game has no winner, got %q", got)
	}
	if got := winnerString(GameState{Status: StatusWhiteWon, Winner: White}); got != "White" {
		t.Fatalf("winner = %q, want White", got)
	}
}
