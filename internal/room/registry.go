// internal/room/registry.go
package room

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/bussfix/internal/auth"
	"github.com/jason-s-yu/bussfix/internal/dependencies/clock"
	"github.com/jason-s-yu/bussfix/internal/dependencies/random"
	"github.com/jason-s-yu/bussfix/internal/game"
	"github.com/jason-s-yu/bussfix/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultGracePeriod is how long a disconnected participant keeps their seat.
const DefaultGracePeriod = 10 * time.Second

// SeatTokens issues and checks the tokens used to resume a seat.
type SeatTokens interface {
	CreateSeatToken(roomID, participantID string) (string, error)
	VerifySeatToken(token string) (*auth.SeatClaims, error)
}

// ActionPublisher receives every accepted action.
type ActionPublisher interface {
	PublishGameAction(ctx context.Context, record models.GameAction) error
}

// ResultRecorder stores final standings.
type ResultRecorder interface {
	RecordGameResults(ctx context.Context, gameID uuid.UUID, roomID string, standings []models.Standing) error
}

// Options wires a Registry. Only Logger is required; Clock and Random
// default to the real implementations.
type Options struct {
	Clock       clock.Clock
	Random      random.Random
	GracePeriod time.Duration
	Tokens      SeatTokens
	History     ActionPublisher
	Results     ResultRecorder
	Logger      logrus.FieldLogger
}

// Seat identifies the caller of a room operation.
type Seat struct {
	RoomID        string
	ParticipantID string
	Token         string
}

// Registry owns every room. Its mutex covers the room map only; each room
// serializes its own actions.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	clock   clock.Clock
	rng     random.Random
	grace   time.Duration
	tokens  SeatTokens
	history ActionPublisher
	results ResultRecorder
	log     logrus.FieldLogger

	// queue feeds history to a single publisher so records leave in
	// ActionIndex order. published is closed once it has drained.
	queue     chan models.GameAction
	published chan struct{}
	// async tracks result writes so Close can wait for them.
	async  sync.WaitGroup
	closed bool
}

func NewRegistry(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Random == nil {
		opts.Random = random.New()
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	reg := &Registry{
		rooms:     make(map[string]*Room),
		clock:     opts.Clock,
		rng:       opts.Random,
		grace:     opts.GracePeriod,
		tokens:    opts.Tokens,
		history:   opts.History,
		results:   opts.Results,
		log:       opts.Logger,
		queue:     make(chan models.GameAction, publishBuffer),
		published: make(chan struct{}),
	}
	go reg.runPublisher()
	return reg
}

// Create opens roomID with the caller as host and sole participant.
func (reg *Registry) Create(roomID, name, passcode string, conn *Connection) (Seat, error) {
	roomID, name = strings.TrimSpace(roomID), strings.TrimSpace(name)
	if roomID == "" || name == "" {
		return Seat{}, ErrBadName
	}

	var hash string
	if passcode != "" {
		h, err := auth.HashPasscode(passcode)
		if err != nil {
			return Seat{}, fmt.Errorf("hash passcode: %w", err)
		}
		hash = h
	}

	reg.mu.Lock()
	if reg.closed {
		reg.mu.Unlock()
		return Seat{}, ErrRegistryClosed
	}
	if _, exists := reg.rooms[roomID]; exists {
		reg.mu.Unlock()
		return Seat{}, ErrRoomExists
	}
	r := &Room{
		ID:           roomID,
		CreatedAt:    reg.clock.Now(),
		passcodeHash: hash,
		log:          reg.log.WithField("room", roomID),
	}
	reg.rooms[roomID] = r
	r.Mu.Lock()
	reg.mu.Unlock()
	defer r.Mu.Unlock()

	m := reg.seatUnsafe(r, name, conn)
	r.HostID = m.ID
	seat, err := reg.issueSeat(r, m)
	if err != nil {
		r.closed = true
		reg.dropRoom(r)
		return Seat{}, err
	}
	r.log.WithField("participant", m.ID).Info("room created")
	r.BroadcastRosterUnsafe()
	return seat, nil
}

// Join seats the caller in an existing room that is not mid-game.
func (reg *Registry) Join(roomID, name, passcode string, conn *Connection) (Seat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Seat{}, ErrBadName
	}
	r, err := reg.lockRoom(roomID)
	if err != nil {
		return Seat{}, err
	}
	defer r.Mu.Unlock()

	if r.playing() {
		return Seat{}, ErrGameInProgress
	}
	if r.passcodeHash != "" {
		ok, err := auth.VerifyPasscode(passcode, r.passcodeHash)
		if err != nil {
			return Seat{}, fmt.Errorf("verify passcode: %w", err)
		}
		if !ok {
			return Seat{}, ErrBadPasscode
		}
	}
	if len(r.members) >= MaxParticipants {
		return Seat{}, ErrRoomFull
	}

	m := reg.seatUnsafe(r, name, conn)
	seat, err := reg.issueSeat(r, m)
	if err != nil {
		r.removeMember(m.ID)
		return Seat{}, err
	}
	r.log.WithField("participant", m.ID).Info("participant joined")
	r.BroadcastRosterUnsafe()
	r.sendStateUnsafe(m)
	return seat, nil
}

// Resume rebinds a seat to a new connection using its seat token. It works
// for as long as the participant has not been removed.
func (reg *Registry) Resume(token string, conn *Connection) (Seat, error) {
	if reg.tokens == nil {
		return Seat{}, auth.ErrInvalidSeatToken
	}
	claims, err := reg.tokens.VerifySeatToken(token)
	if err != nil {
		return Seat{}, err
	}
	r, err := reg.lockRoom(claims.Room)
	if err != nil {
		return Seat{}, err
	}
	defer r.Mu.Unlock()

	m := r.member(claims.Subject)
	if m == nil {
		return Seat{}, ErrNotSeated
	}
	if m.conn != nil && m.conn != conn {
		m.conn.Close()
	}
	m.conn = conn
	m.Connected = true
	m.leaveGen++

	r.log.WithField("participant", m.ID).Info("participant resumed")
	r.BroadcastRosterUnsafe()
	r.sendStateUnsafe(m)
	return Seat{RoomID: r.ID, ParticipantID: m.ID, Token: token}, nil
}

// Start deals a new game to every participant. Only the host may start, and
// not while a game is running.
func (reg *Registry) Start(seat Seat, jokerCount int) error {
	r, m, err := reg.lockSeat(seat)
	if err != nil {
		return err
	}
	defer r.Mu.Unlock()

	if m.ID != r.HostID {
		return ErrNotHost
	}
	if r.playing() {
		return ErrGameInProgress
	}
	if len(r.members) < game.MinPlayers || len(r.members) > game.MaxPlayers {
		return ErrNotEnoughPlayers
	}

	seats := make([]game.Seat, len(r.members))
	for i, p := range r.members {
		seats[i] = game.Seat{ID: p.ID, Name: p.Name}
	}
	s, err := game.NewSession(uuid.New(), seats, jokerCount, reg.rng)
	if err != nil {
		return err
	}
	r.session = s
	r.actionIndex = 0

	r.log.WithFields(logrus.Fields{"game": s.ID, "players": len(seats), "jokers": s.JokerCount}).Info("game started")
	reg.publishUnsafe(r, models.ActionStartGame, m.ID, map[string]interface{}{
		"jokers":  s.JokerCount,
		"players": seats,
	})
	r.BroadcastStateUnsafe()
	return nil
}

// Reset discards an ended game so the room lists as a lobby again. Only the
// host may reset.
func (reg *Registry) Reset(seat Seat) error {
	r, m, err := reg.lockSeat(seat)
	if err != nil {
		return err
	}
	defer r.Mu.Unlock()

	if m.ID != r.HostID {
		return ErrNotHost
	}
	if r.session == nil {
		return ErrNoSession
	}
	if r.session.Stage != game.StageEnded {
		return ErrGameInProgress
	}

	r.log.WithField("game", r.session.ID).Info("game reset")
	r.session = nil
	r.actionIndex = 0
	r.BroadcastRosterUnsafe()
	return nil
}

// Play lays down cards for the caller. A bottle spin it triggers is resolved
// right away with the registry's random source and recorded on the same
// history entry.
func (reg *Registry) Play(seat Seat, refs []models.CardRef) error {
	payload := map[string]interface{}{"cards": refs}
	return reg.act(seat, "play", payload, func(s *game.Session) error {
		out, err := game.PlayCards(s, refs)
		if err != nil || out.Resolved() || out.Awaiting.Kind != game.DecisionSpinBottle {
			return err
		}
		target, err := game.SpinBottle(s)
		if err != nil {
			return err
		}
		payload["spinTarget"] = target
		return nil
	})
}

func (reg *Registry) Pickup(seat Seat) error {
	return reg.act(seat, "pickup", nil, func(s *game.Session) error {
		return game.Pickup(s)
	})
}

func (reg *Registry) ClearTable(seat Seat) error {
	return reg.act(seat, "clear_table", nil, func(s *game.Session) error {
		return game.ClearTable(s)
	})
}

func (reg *Registry) SetJokerRank(seat Seat, cardID int, rank string) error {
	payload := map[string]interface{}{"cardId": cardID, "rank": rank}
	return reg.act(seat, "set_joker_rank", payload, func(s *game.Session) error {
		r, err := models.ParseRank(rank)
		if err != nil {
			return &game.RuleError{Reason: err.Error()}
		}
		return game.SetJokerRank(s, cardID, r)
	})
}

func (reg *Registry) GiveSip(seat Seat, targetID string) error {
	payload := map[string]interface{}{"targetId": targetID}
	return reg.act(seat, "give_sip", payload, func(s *game.Session) error {
		return game.GiveSip(s, targetID)
	})
}

// State returns the caller's view of the current game.
func (reg *Registry) State(seat Seat) (game.SessionView, error) {
	r, m, err := reg.lockSeat(seat)
	if err != nil {
		return game.SessionView{}, err
	}
	defer r.Mu.Unlock()
	if r.session == nil {
		return game.SessionView{}, ErrNoSession
	}
	return game.FilterFor(r.session, m.ID), nil
}

// Leave detaches the caller's connection and starts the grace period.
func (reg *Registry) Leave(seat Seat) error {
	r, m, err := reg.lockSeat(seat)
	if err != nil {
		return err
	}
	defer r.Mu.Unlock()
	reg.detachUnsafe(r, m)
	return nil
}

// Disconnect is Leave for a dropped transport. It is ignored when conn is no
// longer the seat's live connection, e.g. after a resume elsewhere.
func (reg *Registry) Disconnect(seat Seat, conn *Connection) {
	r, m, err := reg.lockSeat(seat)
	if err != nil {
		return
	}
	defer r.Mu.Unlock()
	if m.conn != conn {
		return
	}
	reg.detachUnsafe(r, m)
}

// Get summarizes one room.
func (reg *Registry) Get(roomID string) (Summary, error) {
	r, err := reg.lockRoom(roomID)
	if err != nil {
		return Summary{}, err
	}
	defer r.Mu.Unlock()
	return r.summaryUnsafe(), nil
}

// List summarizes every room, oldest first.
func (reg *Registry) List() []Summary {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.Unlock()

	out := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		r.Mu.Lock()
		if !r.closed {
			out = append(out, r.summaryUnsafe())
		}
		r.Mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Close drops every connection and waits for pending history writes. Create
// fails once Close has started.
func (reg *Registry) Close() {
	reg.mu.Lock()
	if reg.closed {
		reg.mu.Unlock()
		return
	}
	reg.closed = true
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.rooms = make(map[string]*Room)
	reg.mu.Unlock()

	for _, r := range rooms {
		r.Mu.Lock()
		r.closed = true
		for _, m := range r.members {
			if m.conn != nil {
				m.conn.Close()
			}
		}
		r.Mu.Unlock()
	}

	// Every room is closed, so nothing can publish any more.
	close(reg.queue)
	<-reg.published
	reg.async.Wait()
}

// act runs one turn action for the seat's current player under the room lock.
func (reg *Registry) act(seat Seat, actionType string, payload map[string]interface{}, fn func(*game.Session) error) error {
	r, m, err := reg.lockSeat(seat)
	if err != nil {
		return err
	}
	defer r.Mu.Unlock()

	s := r.session
	if s == nil {
		return ErrNoSession
	}
	if s.Stage != game.StagePlaying {
		return game.ErrGameNotPlaying
	}
	if cur := s.CurrentPlayer(); cur == nil || cur.ID != m.ID {
		return ErrNotPlayerTurn
	}

	if err := fn(s); err != nil {
		if errors.Is(err, game.ErrInvariant) {
			r.log.WithError(err).WithFields(logrus.Fields{"game": s.ID, "action": actionType}).Error("rules invariant violated")
			reg.finishUnsafe(r)
			r.BroadcastStateUnsafe()
		}
		return err
	}

	reg.publishUnsafe(r, actionType, m.ID, payload)
	if s.Stage == game.StageEnded {
		reg.finishUnsafe(r)
	}
	r.BroadcastStateUnsafe()
	return nil
}

func (reg *Registry) seatUnsafe(r *Room, name string, conn *Connection) *member {
	m := &member{
		Participant: models.Participant{ID: uuid.NewString(), Name: name, Connected: conn != nil},
		conn:        conn,
	}
	r.members = append(r.members, m)
	return m
}

func (reg *Registry) issueSeat(r *Room, m *member) (Seat, error) {
	seat := Seat{RoomID: r.ID, ParticipantID: m.ID}
	if reg.tokens == nil {
		return seat, nil
	}
	tok, err := reg.tokens.CreateSeatToken(r.ID, m.ID)
	if err != nil {
		return Seat{}, fmt.Errorf("issue seat token: %w", err)
	}
	seat.Token = tok
	return seat, nil
}

// detachUnsafe marks m disconnected and arms the removal timer.
func (reg *Registry) detachUnsafe(r *Room, m *member) {
	m.conn = nil
	m.Connected = false
	m.leaveGen++
	gen := m.leaveGen
	id := m.ID

	r.log.WithFields(logrus.Fields{"participant": id, "grace": reg.grace}).Info("participant disconnected")
	r.BroadcastRosterUnsafe()

	reg.clock.AfterFunc(reg.grace, func() {
		reg.expire(r, id, gen)
	})
}

// expire removes a participant whose grace period ran out without a resume.
func (reg *Registry) expire(r *Room, id string, gen int) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return
	}
	m := r.member(id)
	if m == nil || m.Connected || m.leaveGen != gen {
		return
	}

	r.removeMember(id)
	r.log.WithField("participant", id).Info("participant removed after grace period")
	if len(r.members) == 0 {
		r.closed = true
		reg.dropRoom(r)
		r.log.Info("room empty, destroyed")
		return
	}
	if r.HostID == id {
		r.HostID = r.members[0].ID
		r.log.WithField("host", r.HostID).Info("host transferred")
	}
	r.BroadcastRosterUnsafe()
}

func (reg *Registry) dropRoom(r *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.rooms[r.ID] == r {
		delete(reg.rooms, r.ID)
	}
}

// lockRoom returns the room locked, or ErrRoomNotFound.
func (reg *Registry) lockRoom(roomID string) (*Room, error) {
	reg.mu.Lock()
	r, ok := reg.rooms[roomID]
	reg.mu.Unlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	r.Mu.Lock()
	if r.closed {
		r.Mu.Unlock()
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// lockSeat returns the seat's room locked together with its member.
func (reg *Registry) lockSeat(seat Seat) (*Room, *member, error) {
	r, err := reg.lockRoom(seat.RoomID)
	if err != nil {
		return nil, nil, err
	}
	m := r.member(seat.ParticipantID)
	if m == nil {
		r.Mu.Unlock()
		return nil, nil, ErrNotSeated
	}
	return r, m, nil
}
