package room

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Message is one outbound frame. It is encoded as soon as it is written so
// nothing shared with the session escapes the room lock.
type Message map[string]interface{}

// Connection is a participant's outbound queue. The transport drains OutChan
// and stops once Done is closed.
type Connection struct {
	OutChan chan []byte

	done chan struct{}
	once sync.Once
	log  logrus.FieldLogger
}

func NewConnection(buffer int, log logrus.FieldLogger) *Connection {
	return &Connection{
		OutChan: make(chan []byte, buffer),
		done:    make(chan struct{}),
		log:     log,
	}
}

// Write queues msg without blocking. A full queue drops the frame.
func (c *Connection) Write(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.WithError(err).WithField("type", msg["type"]).Error("failed to encode outbound message")
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.OutChan <- data:
		return true
	default:
		c.log.WithField("type", msg["type"]).Warn("outbound queue full, dropped message")
		return false
	}
}

// WriteError sends {type:"error", reason}.
func (c *Connection) WriteError(reason string) {
	c.Write(Message{"type": "error", "reason": reason})
}

// Close tells the writer to stop. Safe to call more than once.
func (c *Connection) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Connection) Done() <-chan struct{} {
	return c.done
}
