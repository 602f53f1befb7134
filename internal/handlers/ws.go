// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/bussfix/internal/middleware"
	"github.com/jason-s-yu/bussfix/internal/room"
	"github.com/sirupsen/logrus"
)

// Subprotocol clients must request on /ws.
const Subprotocol = "bussfix"

const (
	outboundBuffer = 32
	readLimit      = 32 << 10
	pingInterval   = 30 * time.Second
	writeTimeout   = 5 * time.Second
)

// wsClient is one socket. seat is nil until create, join or resume succeeds.
type wsClient struct {
	reg  *room.Registry
	conn *room.Connection
	seat *room.Seat
	log  logrus.FieldLogger
}

// RoomWSHandler upgrades /ws and runs the message loop for one client.
func RoomWSHandler(logger logrus.FieldLogger, reg *room.Registry, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.WithError(err).Warn("websocket accept error")
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the bussfix subprotocol")
			return
		}
		c.SetReadLimit(readLimit)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		log := logger.WithField("remote", r.RemoteAddr)
		client := &wsClient{
			reg:  reg,
			conn: room.NewConnection(outboundBuffer, log),
			log:  log,
		}
		go writePump(ctx, cancel, c, client.conn, log)

		err = client.readPump(ctx, c)

		if client.seat != nil {
			reg.Disconnect(*client.seat, client.conn)
		}
		client.conn.Close()
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
	}
}

// readPump decodes envelopes until the socket closes. A nil return is a
// normal closure.
func (cl *wsClient) readPump(ctx context.Context, c *websocket.Conn) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			cl.log.WithField("messageType", typ).Warn("ignoring non-text frame")
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			cl.conn.WriteError("Invalid JSON format")
			continue
		}
		cl.handle(env)
	}
}

func (cl *wsClient) handle(env Envelope) {
	log := cl.log.WithField("type", env.Type)

	switch env.Type {
	case "ping":
		cl.conn.Write(room.Message{"type": "pong"})
		return
	case "create", "join":
		var req seatRequest
		if err := decodePayload(env.Payload, &req); err != nil {
			cl.conn.Write(ackFailed(err))
			return
		}
		var seat room.Seat
		var err error
		if env.Type == "create" {
			seat, err = cl.reg.Create(req.RoomID, req.Name, req.Passcode, cl.conn)
		} else {
			seat, err = cl.reg.Join(req.RoomID, req.Name, req.Passcode, cl.conn)
		}
		cl.seatResult(seat, err, log)
		return
	case "resume":
		var req resumeRequest
		if err := decodePayload(env.Payload, &req); err != nil {
			cl.conn.Write(ackFailed(err))
			return
		}
		seat, err := cl.reg.Resume(req.Token, cl.conn)
		cl.seatResult(seat, err, log)
		return
	}

	if cl.seat == nil {
		cl.conn.WriteError(room.ErrNotSeated.Error())
		return
	}
	seat := *cl.seat
	log = log.WithFields(logrus.Fields{"room": seat.RoomID, "participant": seat.ParticipantID})

	var err error
	switch env.Type {
	case "start":
		var req startRequest
		if err = decodePayload(env.Payload, &req); err == nil {
			err = cl.reg.Start(seat, req.JokerCount)
		}
	case "reset":
		err = cl.reg.Reset(seat)
	case "play":
		var req playRequest
		if err = decodePayload(env.Payload, &req); err == nil {
			err = cl.reg.Play(seat, req.Cards)
		}
	case "pickup":
		err = cl.reg.Pickup(seat)
	case "clearTable":
		err = cl.reg.ClearTable(seat)
	case "setJokerRank":
		var req jokerRequest
		if err = decodePayload(env.Payload, &req); err == nil {
			err = cl.reg.SetJokerRank(seat, req.CardID, req.Rank)
		}
	case "giveSip":
		var req giveSipRequest
		if err = decodePayload(env.Payload, &req); err == nil {
			err = cl.reg.GiveSip(seat, req.TargetID)
		}
	case "getState":
		view, verr := cl.reg.State(seat)
		if verr == nil {
			cl.conn.Write(room.Message{"type": "state", "payload": view})
		}
		err = verr
	case "leave":
		cl.releaseSeat()
	default:
		log.Warn("unknown action")
		cl.conn.WriteError("Unknown action type: " + env.Type)
		return
	}

	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) || errors.Is(err, room.ErrNotSeated) || errors.Is(err, room.ErrNoSession) {
			log.WithError(err).Warn("action without a usable seat")
		} else {
			log.WithError(err).Debug("action rejected")
		}
		cl.conn.WriteError(reason(err))
	}
}

func (cl *wsClient) seatResult(seat room.Seat, err error, log logrus.FieldLogger) {
	if err != nil {
		log.WithError(err).Debug("seat request rejected")
		cl.conn.Write(ackFailed(err))
		return
	}
	if cl.seat != nil && (cl.seat.RoomID != seat.RoomID || cl.seat.ParticipantID != seat.ParticipantID) {
		cl.releaseSeat()
	}
	cl.seat = &seat
	cl.conn.Write(ackOK(seat))
}

// releaseSeat leaves the current room, if any. The previous seat is only
// released once a new one has been taken.
func (cl *wsClient) releaseSeat() {
	if cl.seat == nil {
		return
	}
	if err := cl.reg.Leave(*cl.seat); err != nil {
		cl.log.WithError(err).Debug("leave on reseat")
	}
	cl.seat = nil
}

// writePump drains the connection's queue onto the socket and keeps it alive
// with pings. It cancels the handler once the registry closes the connection.
func writePump(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, conn *room.Connection, log logrus.FieldLogger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			c.Close(SeatReplacedError, "connection closed by server")
			cancel()
			return
		case data := <-conn.OutChan:
			writeCtx, wcancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, websocket.MessageText, data)
			wcancel()
			if err != nil {
				log.WithError(err).Warn("failed to write to websocket")
				cancel()
				return
			}
		case <-ticker.C:
			pingCtx, pcancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			pcancel()
			if err != nil {
				log.WithError(err).Warn("ping failed, assuming disconnect")
				cancel()
				return
			}
		}
	}
}
