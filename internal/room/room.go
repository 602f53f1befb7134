// internal/room/room.go
package room

import (
	"sync"
	"time"

	"github.com/jason-s-yu/bussfix/internal/game"
	"github.com/jason-s-yu/bussfix/internal/models"
	"github.com/sirupsen/logrus"
)

// MaxParticipants matches the largest table the engine deals.
const MaxParticipants = game.MaxPlayers

// member is a participant plus its live connection. conn is nil while the
// participant is disconnected or has left.
type member struct {
	models.Participant
	conn *Connection
	// leaveGen invalidates grace timers armed before a reconnect.
	leaveGen int
}

// Room is one table: its participants in join order, the host, and the game
// session once started. Every field is guarded by Mu.
type Room struct {
	ID        string
	HostID    string
	CreatedAt time.Time

	members      []*member
	session      *game.Session
	passcodeHash string
	actionIndex  int
	// closed is set once the room is dropped from the registry; lookups that
	// raced the removal treat it as missing.
	closed bool

	log logrus.FieldLogger
	Mu  sync.Mutex
}

// Summary is the public listing of a room.
type Summary struct {
	ID           string     `json:"id"`
	Participants int        `json:"participants"`
	Stage        game.Stage `json:"stage"`
	Locked       bool       `json:"locked"`
	HostName     string     `json:"hostName"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (r *Room) member(id string) *member {
	for _, m := range r.members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *Room) removeMember(id string) {
	kept := r.members[:0]
	for _, m := range r.members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	r.members = kept
}

func (r *Room) playing() bool {
	return r.session != nil && r.session.Stage == game.StagePlaying
}

func (r *Room) summaryUnsafe() Summary {
	sum := Summary{
		ID:           r.ID,
		Participants: len(r.members),
		Stage:        game.StageLobby,
		Locked:       r.passcodeHash != "",
		CreatedAt:    r.CreatedAt,
	}
	if r.session != nil {
		sum.Stage = r.session.Stage
	}
	if h := r.member(r.HostID); h != nil {
		sum.HostName = h.Name
	}
	return sum
}

// rosterUnsafe is the players push payload: participant id -> entry.
func (r *Room) rosterUnsafe() map[string]models.Participant {
	out := make(map[string]models.Participant, len(r.members))
	for _, m := range r.members {
		p := m.Participant
		p.IsHost = m.ID == r.HostID
		out[m.ID] = p
	}
	return out
}

// BroadcastRosterUnsafe sends the roster to everyone connected.
func (r *Room) BroadcastRosterUnsafe() {
	r.broadcastUnsafe(Message{"type": "players", "payload": r.rosterUnsafe()})
}

// BroadcastStateUnsafe sends each connected participant their own view.
func (r *Room) BroadcastStateUnsafe() {
	if r.session == nil {
		return
	}
	for _, m := range r.members {
		if m.conn != nil {
			m.conn.Write(Message{"type": "state", "payload": game.FilterFor(r.session, m.ID)})
		}
	}
}

func (r *Room) sendStateUnsafe(m *member) {
	if r.session != nil && m.conn != nil {
		m.conn.Write(Message{"type": "state", "payload": game.FilterFor(r.session, m.ID)})
	}
}

func (r *Room) broadcastUnsafe(msg Message) {
	for _, m := range r.members {
		if m.conn != nil {
			m.conn.Write(msg)
		}
	}
}
