package queue

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/traldis/court-queue/models"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

var testClock = func() time.Time {
	return time.Date(2025, 6, 14, 19, 0, 0, 0, time.UTC)
}

func newTestEngine() *Engine {
	return NewEngine(&seqIDs{}, testClock)
}

func activeEvent() *models.Event {
	return &models.Event{
		ID:     "event-1",
		Title:  "Friday Run",
		Date:   "2025-06-14",
		Status: models.EventStatusActive,
	}
}

func activeSnapshot() Snapshot {
	return Snapshot{Event: activeEvent()}
}

func soloInput(i int) PlayerInput {
	return PlayerInput{
		Name:  fmt.Sprintf("Player %d", i),
		Phone: fmt.Sprintf("+5511999%04d", i),
	}
}

func roster(base int) []PlayerInput {
	players := make([]PlayerInput, rosterSize)
	for i := range players {
		players[i] = soloInput(base + i)
	}
	return players
}

func checkInSolos(t *testing.T, e *Engine, snap Snapshot, count int) Snapshot {
	t.Helper()
	for i := 0; i < count; i++ {
		next, _, err := e.CheckInSolo(snap, soloInput(i+1))
		if err != nil {
			t.Fatalf("solo check-in %d: %v", i+1, err)
		}
		snap = next
	}
	return snap
}

func TestCheckInSolo_AddsToQueue(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	next, muts, err := e.CheckInSolo(activeSnapshot(), soloInput(1))
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if len(next.SoloQueue) != 1 {
		t.Fatalf("unexpected solo queue length: %d", len(next.SoloQueue))
	}
	if len(muts) != 1 {
		t.Fatalf("unexpected mutation count: %d", len(muts))
	}
	ins, ok := muts[0].(InsertPlayer)
	if !ok {
		t.Fatalf("unexpected mutation type: %T", muts[0])
	}
	if ins.Player.Status != models.PlayerStatusWaiting || ins.Player.PlayerType != models.PlayerTypeSolo {
		t.Fatalf("unexpected player row: %+v", ins.Player)
	}
}

func TestCheckInSolo_FourStayUngrouped(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 4)

	if len(snap.SoloQueue) != 4 {
		t.Fatalf("expected 4 ungrouped solos, got %d", len(snap.SoloQueue))
	}
	if len(snap.TeamsQueue) != 0 {
		t.Fatalf("no team should form before the fifth solo, got %d", len(snap.TeamsQueue))
	}
}

func TestCheckInSolo_FifthFormsRandomTeam(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 4)

	next, muts, err := e.CheckInSolo(snap, soloInput(5))
	if err != nil {
		t.Fatalf("fifth check-in: %v", err)
	}
	if len(next.SoloQueue) != 0 {
		t.Fatalf("solos should be drained into the team, %d left", len(next.SoloQueue))
	}
	if len(next.TeamsQueue) != 1 {
		t.Fatalf("expected one team, got %d", len(next.TeamsQueue))
	}

	team := next.TeamsQueue[0]
	if team.Name != "Random Team 1" {
		t.Fatalf("unexpected team name: %s", team.Name)
	}
	if team.Type != models.TeamTypeRandom || team.Status != models.TeamStatusWaiting {
		t.Fatalf("unexpected team row: %+v", team)
	}
	if team.Position != 1 {
		t.Fatalf("first team should take position 1, got %d", team.Position)
	}
	if len(team.Players) != rosterSize {
		t.Fatalf("expected %d players on the team, got %d", rosterSize, len(team.Players))
	}
	for _, p := range team.Players {
		if p.TeamID == nil || *p.TeamID != team.ID {
			t.Fatalf("player %s not assigned to the team", p.ID)
		}
	}

	// InsertPlayer, then the team insert and the assignment.
	if len(muts) != 3 {
		t.Fatalf("unexpected mutation count: %d", len(muts))
	}
	if _, ok := muts[1].(InsertTeam); !ok {
		t.Fatalf("expected InsertTeam second, got %T", muts[1])
	}
	assign, ok := muts[2].(AssignPlayersToTeam)
	if !ok {
		t.Fatalf("expected AssignPlayersToTeam third, got %T", muts[2])
	}
	if len(assign.PlayerIDs) != rosterSize || assign.TeamID != team.ID {
		t.Fatalf("unexpected assignment: %+v", assign)
	}
}

func TestCheckInSolo_TenthFormsSecondTeam(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 10)

	if len(snap.SoloQueue) != 0 {
		t.Fatalf("expected empty solo queue, got %d", len(snap.SoloQueue))
	}
	if len(snap.TeamsQueue) != 2 {
		t.Fatalf("expected two teams after ten solos, got %d", len(snap.TeamsQueue))
	}
	if snap.TeamsQueue[1].Name != "Random Team 2" {
		t.Fatalf("unexpected second team name: %s", snap.TeamsQueue[1].Name)
	}
	if snap.TeamsQueue[1].Position != 2 {
		t.Fatalf("second team should take position 2, got %d", snap.TeamsQueue[1].Position)
	}

	// No player may be claimed twice.
	seen := make(map[string]bool)
	for _, team := range snap.TeamsQueue {
		for _, p := range team.Players {
			if seen[p.ID] {
				t.Fatalf("player %s grouped twice", p.ID)
			}
			seen[p.ID] = true
		}
	}
}

func TestCheckInSolo_GroupsOldestFirst(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 5)

	team := snap.TeamsQueue[0]
	for i, p := range team.Players {
		want := fmt.Sprintf("Player %d", i+1)
		if p.Name != want {
			t.Fatalf("slot %d holds %s, want %s", i, p.Name, want)
		}
	}
}

func TestCheckInSolo_DuplicatePhoneRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 1)

	_, muts, err := e.CheckInSolo(snap, PlayerInput{Name: "Someone Else", Phone: soloInput(1).Phone})
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
	if muts != nil {
		t.Fatalf("a rejected check-in must not produce mutations")
	}
}

func TestCheckInSolo_DuplicatePhoneInsideTeamRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 5) // all five now sit inside a team

	_, _, err := e.CheckInSolo(snap, PlayerInput{Name: "Someone Else", Phone: soloInput(3).Phone})
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone for grouped player's phone, got %v", err)
	}
}

func TestCheckInSolo_PausedQueueRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := activeSnapshot()
	snap.Event.IsPaused = true

	_, _, err := e.CheckInSolo(snap, soloInput(1))
	if !errors.Is(err, ErrQueuePaused) {
		t.Fatalf("expected ErrQueuePaused, got %v", err)
	}
}

func TestCheckInSolo_InactiveEventRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := activeSnapshot()
	snap.Event.Status = models.EventStatusFinished

	_, _, err := e.CheckInSolo(snap, soloInput(1))
	if !errors.Is(err, ErrEventNotActive) {
		t.Fatalf("expected ErrEventNotActive, got %v", err)
	}
}

func TestCheckInSolo_MissingFieldsRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	_, _, err := e.CheckInSolo(activeSnapshot(), PlayerInput{Name: "  ", Phone: "+5511990000"})
	if !errors.Is(err, ErrInvalidRoster) {
		t.Fatalf("expected ErrInvalidRoster for blank name, got %v", err)
	}
}

func TestCheckInTeam_JoinsAtBack(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 5) // Random Team 1 at position 1

	next, muts, err := e.CheckInTeam(snap, "Os Craques", roster(100))
	if err != nil {
		t.Fatalf("team check-in: %v", err)
	}
	if len(next.TeamsQueue) != 2 {
		t.Fatalf("expected two teams, got %d", len(next.TeamsQueue))
	}

	team := next.TeamsQueue[1]
	if team.Name != "Os Craques" || team.Type != models.TeamTypeReady {
		t.Fatalf("unexpected team row: %+v", team)
	}
	if team.Position != 2 {
		t.Fatalf("new team should queue behind, got position %d", team.Position)
	}
	// Team insert plus one insert per player.
	if len(muts) != 1+rosterSize {
		t.Fatalf("unexpected mutation count: %d", len(muts))
	}
}

func TestCheckInTeam_IncompleteRosterRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine()

	cases := map[string][]PlayerInput{
		"four players": roster(1)[:4],
		"six players":  append(roster(1), soloInput(7)),
		"blank phone": {
			soloInput(1), soloInput(2), soloInput(3), soloInput(4),
			{Name: "No Phone", Phone: "  "},
		},
	}
	for name, players := range cases {
		if _, _, err := e.CheckInTeam(activeSnapshot(), "Incomplete", players); !errors.Is(err, ErrInvalidRoster) {
			t.Fatalf("%s: expected ErrInvalidRoster, got %v", name, err)
		}
	}
}

func TestCheckInTeam_ClosedQueueRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine()

	paused := activeSnapshot()
	paused.Event.IsPaused = true
	if _, _, err := e.CheckInTeam(paused, "Os Craques", roster(1)); !errors.Is(err, ErrQueuePaused) {
		t.Fatalf("expected ErrQueuePaused, got %v", err)
	}

	finished := activeSnapshot()
	finished.Event.Status = models.EventStatusFinished
	if _, _, err := e.CheckInTeam(finished, "Os Craques", roster(1)); !errors.Is(err, ErrEventNotActive) {
		t.Fatalf("expected ErrEventNotActive, got %v", err)
	}
}

func TestStartNextMatch_TakesTwoLowestPositions(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := activeSnapshot()
	snap.TeamsQueue = []models.Team{
		{ID: "t-3", EventID: "event-1", Status: models.TeamStatusWaiting, Position: 3},
		{ID: "t-1", EventID: "event-1", Status: models.TeamStatusWaiting, Position: 1},
		{ID: "t-2", EventID: "event-1", Status: models.TeamStatusWaiting, Position: 2},
	}

	next, muts, err := e.StartNextMatch(snap)
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	if next.CurrentMatch == nil {
		t.Fatalf("expected a current match")
	}
	if next.CurrentMatch.TeamAID != "t-1" || next.CurrentMatch.TeamBID != "t-2" {
		t.Fatalf("expected t-1 vs t-2, got %s vs %s", next.CurrentMatch.TeamAID, next.CurrentMatch.TeamBID)
	}
	if next.CurrentMatch.Status != models.MatchStatusInProgress {
		t.Fatalf("unexpected match status: %s", next.CurrentMatch.Status)
	}
	for _, team := range next.TeamsQueue {
		want := models.TeamStatusWaiting
		if team.ID == "t-1" || team.ID == "t-2" {
			want = models.TeamStatusPlaying
		}
		if team.Status != want {
			t.Fatalf("team %s status %s, want %s", team.ID, team.Status, want)
		}
	}
	if len(muts) != 3 {
		t.Fatalf("unexpected mutation count: %d", len(muts))
	}
}

func TestStartNextMatch_RefusedWhileMatchRunning(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := activeSnapshot()
	snap.TeamsQueue = []models.Team{
		{ID: "t-1", Status: models.TeamStatusWaiting, Position: 1},
		{ID: "t-2", Status: models.TeamStatusWaiting, Position: 2},
	}
	snap.CurrentMatch = &models.Match{ID: "m-1", Status: models.MatchStatusInProgress}

	if _, _, err := e.StartNextMatch(snap); !errors.Is(err, ErrMatchInProgress) {
		t.Fatalf("expected ErrMatchInProgress, got %v", err)
	}
}

func TestStartNextMatch_NeedsTwoWaitingTeams(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := activeSnapshot()
	snap.TeamsQueue = []models.Team{
		{ID: "t-1", Status: models.TeamStatusWaiting, Position: 1},
	}

	if _, _, err := e.StartNextMatch(snap); !errors.Is(err, ErrInsufficientTeams) {
		t.Fatalf("expected ErrInsufficientTeams, got %v", err)
	}
}

func TestStartNextMatch_NoEvent(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	if _, _, err := e.StartNextMatch(Snapshot{}); !errors.Is(err, ErrEventNotActive) {
		t.Fatalf("expected ErrEventNotActive, got %v", err)
	}
}

func TestEndCurrentMatch_RequeuesBothTeamsAtBack(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := activeSnapshot()
	snap.TeamsQueue = []models.Team{
		{ID: "t-1", Status: models.TeamStatusPlaying, Position: 1},
		{ID: "t-2", Status: models.TeamStatusPlaying, Position: 2},
		{ID: "t-3", Status: models.TeamStatusWaiting, Position: 3},
	}
	snap.CurrentMatch = &models.Match{
		ID: "m-1", EventID: "event-1",
		TeamAID: "t-1", TeamBID: "t-2",
		Status: models.MatchStatusInProgress,
	}

	next, muts, err := e.EndCurrentMatch(snap)
	if err != nil {
		t.Fatalf("end match: %v", err)
	}
	if next.CurrentMatch != nil {
		t.Fatalf("match should be cleared")
	}

	positions := make(map[string]int)
	for _, team := range next.TeamsQueue {
		positions[team.ID] = team.Position
		if team.Status != models.TeamStatusWaiting {
			t.Fatalf("team %s should be waiting, got %s", team.ID, team.Status)
		}
	}
	// Both re-enter strictly behind the rest, team A before team B.
	if positions["t-1"] != 4 || positions["t-2"] != 5 {
		t.Fatalf("unexpected requeue positions: %+v", positions)
	}
	if positions["t-3"] != 3 {
		t.Fatalf("untouched team moved: %+v", positions)
	}

	var requeues []RequeueTeam
	for _, mut := range muts {
		if rq, ok := mut.(RequeueTeam); ok {
			requeues = append(requeues, rq)
		}
	}
	if len(requeues) != 2 {
		t.Fatalf("expected two requeue mutations, got %d", len(requeues))
	}
	if requeues[0].TeamID != "t-1" || requeues[0].Position != 4 {
		t.Fatalf("unexpected first requeue: %+v", requeues[0])
	}
	if requeues[1].TeamID != "t-2" || requeues[1].Position != 5 {
		t.Fatalf("unexpected second requeue: %+v", requeues[1])
	}
}

func TestEndCurrentMatch_NoMatchIsNoOp(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := activeSnapshot()

	_, muts, err := e.EndCurrentMatch(snap)
	if !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("expected ErrNoActiveMatch, got %v", err)
	}
	if muts != nil {
		t.Fatalf("ending without a match must not produce mutations")
	}
}

func TestRemoveTeam_PlayingTeamLocked(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := activeSnapshot()
	snap.TeamsQueue = []models.Team{
		{ID: "t-1", Status: models.TeamStatusPlaying, Position: 1},
	}

	if _, _, err := e.RemoveTeam(snap, "t-1"); !errors.Is(err, ErrPlayingTeamLocked) {
		t.Fatalf("expected ErrPlayingTeamLocked, got %v", err)
	}
}

func TestRemoveTeam_CascadesPlayers(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 5)
	teamID := snap.TeamsQueue[0].ID

	next, muts, err := e.RemoveTeam(snap, teamID)
	if err != nil {
		t.Fatalf("remove team: %v", err)
	}
	if len(next.TeamsQueue) != 0 {
		t.Fatalf("team should be gone, %d left", len(next.TeamsQueue))
	}
	if len(muts) != 2 {
		t.Fatalf("unexpected mutation count: %d", len(muts))
	}
	if _, ok := muts[0].(DeletePlayersByTeam); !ok {
		t.Fatalf("players must be deleted before the team, got %T first", muts[0])
	}
	if _, ok := muts[1].(DeleteTeam); !ok {
		t.Fatalf("expected DeleteTeam second, got %T", muts[1])
	}
}

func TestRemovePlayer_UnknownID(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	if _, _, err := e.RemovePlayer(activeSnapshot(), "ghost"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestClearQueue_LeavesMatchAlone(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 7)
	snap.CurrentMatch = &models.Match{ID: "m-1", Status: models.MatchStatusInProgress}

	next, muts, err := e.ClearQueue(snap)
	if err != nil {
		t.Fatalf("clear queue: %v", err)
	}
	if len(next.SoloQueue) != 0 || len(next.TeamsQueue) != 0 {
		t.Fatalf("queue not cleared: %d solos, %d teams", len(next.SoloQueue), len(next.TeamsQueue))
	}
	if next.CurrentMatch == nil {
		t.Fatalf("clearing must not cancel the running match")
	}
	if len(muts) != 2 {
		t.Fatalf("unexpected mutation count: %d", len(muts))
	}
}

func TestClearQueue_SparesTeamsOnCourt(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 10)
	snap, _, err := e.StartNextMatch(snap)
	if err != nil {
		t.Fatalf("start match: %v", err)
	}
	snap = checkInSolos(t, e, snap, 3)

	next, _, err := e.ClearQueue(snap)
	if err != nil {
		t.Fatalf("clear queue: %v", err)
	}
	if len(next.SoloQueue) != 0 {
		t.Fatalf("solo queue not cleared: %d", len(next.SoloQueue))
	}
	if len(next.TeamsQueue) != 2 {
		t.Fatalf("playing teams must survive the clear, got %d teams", len(next.TeamsQueue))
	}
	for _, team := range next.TeamsQueue {
		if team.Status != models.TeamStatusPlaying {
			t.Fatalf("surviving team %s has status %s", team.ID, team.Status)
		}
		if len(team.Players) != rosterSize {
			t.Fatalf("surviving team %s lost players: %d", team.ID, len(team.Players))
		}
	}
	if next.CurrentMatch == nil {
		t.Fatalf("clearing must not cancel the running match")
	}
}

func TestSetEventStatus_PauseKeepsLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	paused := true

	next, muts, err := e.SetEventStatus(activeSnapshot(), "", &paused)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if next.Event.Status != models.EventStatusActive {
		t.Fatalf("pausing must not change the lifecycle status, got %s", next.Event.Status)
	}
	if !next.Event.IsPaused {
		t.Fatalf("event should be paused")
	}
	upd, ok := muts[0].(UpdateEventStatus)
	if !ok {
		t.Fatalf("unexpected mutation type: %T", muts[0])
	}
	if upd.Status != models.EventStatusActive || upd.IsPaused == nil || !*upd.IsPaused {
		t.Fatalf("unexpected mutation: %+v", upd)
	}
}

func TestCommandsDoNotMutateInput(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 4)

	before := len(snap.SoloQueue)
	if _, _, err := e.CheckInSolo(snap, soloInput(5)); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if len(snap.SoloQueue) != before {
		t.Fatalf("input snapshot was mutated")
	}
	if len(snap.TeamsQueue) != 0 {
		t.Fatalf("input snapshot grew a team")
	}
}

// Full evening: ten solos group into two teams, a walk-up team joins, the
// admin rotates two matches.
func TestRotationScenario(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	snap := checkInSolos(t, e, activeSnapshot(), 10)

	snap, _, err := e.CheckInTeam(snap, "Galera do Zé", roster(200))
	if err != nil {
		t.Fatalf("team check-in: %v", err)
	}

	// Random Team 1 vs Random Team 2.
	snap, _, err = e.StartNextMatch(snap)
	if err != nil {
		t.Fatalf("first match start: %v", err)
	}
	aID, bID := snap.CurrentMatch.TeamAID, snap.CurrentMatch.TeamBID

	snap, _, err = e.EndCurrentMatch(snap)
	if err != nil {
		t.Fatalf("first match end: %v", err)
	}

	// The walk-up team held position 3, so it now heads the queue with the
	// first finished team behind it.
	snap, _, err = e.StartNextMatch(snap)
	if err != nil {
		t.Fatalf("second match start: %v", err)
	}
	if snap.CurrentMatch.TeamAID == bID {
		t.Fatalf("team B re-entered before team A")
	}
	if snap.CurrentMatch.TeamBID != aID {
		t.Fatalf("expected the first finished team on court again, got %s", snap.CurrentMatch.TeamBID)
	}
	if snap.CurrentMatch.TeamAID == aID || snap.CurrentMatch.TeamAID == bID {
		t.Fatalf("expected the walk-up team on court, got %s", snap.CurrentMatch.TeamAID)
	}
}
