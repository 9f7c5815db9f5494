package queue

import (
	"sort"

	"github.com/traldis/court-queue/models"
)

// Snapshot is the engine's view of one event's queue state, as loaded from
// the store. SoloQueue holds ungrouped waiting solos ordered by check-in
// time; TeamsQueue holds waiting and playing teams ordered by position, each
// with its players attached.
type Snapshot struct {
	Event        *models.Event
	SoloQueue    []models.QueuePlayer
	TeamsQueue   []models.Team
	CurrentMatch *models.Match
}

// Clone returns a deep enough copy for the engine to mutate: slices and the
// entities commands touch are copied, so the caller's snapshot stays intact.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{}
	if s.Event != nil {
		ev := *s.Event
		out.Event = &ev
	}
	if s.CurrentMatch != nil {
		m := *s.CurrentMatch
		out.CurrentMatch = &m
	}
	out.SoloQueue = make([]models.QueuePlayer, len(s.SoloQueue))
	copy(out.SoloQueue, s.SoloQueue)
	out.TeamsQueue = make([]models.Team, len(s.TeamsQueue))
	for i, t := range s.TeamsQueue {
		players := make([]models.QueuePlayer, len(t.Players))
		copy(players, t.Players)
		t.Players = players
		out.TeamsQueue[i] = t
	}
	return out
}

// WaitingTeams returns the waiting teams in position order.
func (s Snapshot) WaitingTeams() []models.Team {
	var out []models.Team
	for _, t := range s.TeamsQueue {
		if t.Status == models.TeamStatusWaiting {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// MaxPosition returns the largest position held by any team in the queue,
// playing teams included, or zero when the queue is empty.
func (s Snapshot) MaxPosition() int {
	max := 0
	for _, t := range s.TeamsQueue {
		if t.Position > max {
			max = t.Position
		}
	}
	return max
}

func (s Snapshot) randomTeamCount() int {
	n := 0
	for _, t := range s.TeamsQueue {
		if t.Type == models.TeamTypeRandom {
			n++
		}
	}
	return n
}

// hasWaitingPhone checks the duplicate key for solo check-in: any waiting
// player, grouped or not, already holding this phone number.
func (s Snapshot) hasWaitingPhone(phone string) bool {
	for _, p := range s.SoloQueue {
		if p.Phone == phone && p.Status == models.PlayerStatusWaiting {
			return true
		}
	}
	for _, t := range s.TeamsQueue {
		for _, p := range t.Players {
			if p.Phone == phone && p.Status == models.PlayerStatusWaiting {
				return true
			}
		}
	}
	return false
}

func (s *Snapshot) teamIndex(teamID string) int {
	for i := range s.TeamsQueue {
		if s.TeamsQueue[i].ID == teamID {
			return i
		}
	}
	return -1
}

func (s *Snapshot) sortTeams() {
	sort.SliceStable(s.TeamsQueue, func(i, j int) bool {
		return s.TeamsQueue[i].Position < s.TeamsQueue[j].Position
	})
}
