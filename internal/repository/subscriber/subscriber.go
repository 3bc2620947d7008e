package subscriber

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	ErrNotFound      = errors.New("subscriber not found")
	ErrAlreadyExists = errors.New("subscriber already exists")
)

// Subscriber binds a member's websocket connection to a buffered event
// queue. Mutators enqueue; a per-connection writer drains the queue, so a
// state transition never blocks on the network.
type Subscriber struct {
	MemberId string
	RoomId   string

	conn   *websocket.Conn
	queue  chan []byte
	closed bool
	mu     sync.Mutex
}

func New(conn *websocket.Conn, memberId, roomId string, queueSize int) *Subscriber {
	return &Subscriber{
		MemberId: memberId,
		RoomId:   roomId,
		conn:     conn,
		queue:    make(chan []byte, queueSize),
	}
}

func (s *Subscriber) Conn() *websocket.Conn {
	return s.conn
}

// Queue is drained by the connection's writer pump. It is closed when the
// subscriber is removed.
func (s *Subscriber) Queue() <-chan []byte {
	return s.queue
}

// Enqueue queues data without blocking. Returns false if the subscriber is
// closed or its queue is full; a full queue means the peer is too slow and
// the caller should drop it.
func (s *Subscriber) Enqueue(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.queue <- data:
		return true
	default:
		return false
	}
}

func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.queue)
	}
}
