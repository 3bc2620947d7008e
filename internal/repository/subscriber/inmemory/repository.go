package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/subscriber"
)

const defaultQueueSize = 64

type repo struct {
	connList map[*websocket.Conn]*subscriber.Subscriber
	idList   map[string]*subscriber.Subscriber
	roomList map[string]map[string]*subscriber.Subscriber
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]*subscriber.Subscriber),
		idList:   make(map[string]*subscriber.Subscriber),
		roomList: make(map[string]map[string]*subscriber.Subscriber),
	}
}

func (r *repo) Add(conn *websocket.Conn, memberId, roomId string) (*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != nil || r.idList[memberId] != nil {
		return nil, subscriber.ErrAlreadyExists
	}

	sub := subscriber.New(conn, memberId, roomId, defaultQueueSize)
	r.connList[conn] = sub
	r.idList[memberId] = sub
	if r.roomList[roomId] == nil {
		r.roomList[roomId] = make(map[string]*subscriber.Subscriber)
	}
	r.roomList[roomId][memberId] = sub

	return sub, nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) (*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.connList[conn]
	if !ok {
		return nil, subscriber.ErrNotFound
	}

	r.remove(sub)

	return sub, nil
}

func (r *repo) RemoveByMemberId(memberId string) (*subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.idList[memberId]
	if !ok {
		return nil, subscriber.ErrNotFound
	}

	r.remove(sub)

	return sub, nil
}

func (r *repo) remove(sub *subscriber.Subscriber) {
	delete(r.connList, sub.Conn())
	delete(r.idList, sub.MemberId)
	if members := r.roomList[sub.RoomId]; members != nil {
		delete(members, sub.MemberId)
		if len(members) == 0 {
			delete(r.roomList, sub.RoomId)
		}
	}

	sub.Close()
}

func (r *repo) GetByConn(conn *websocket.Conn) (*subscriber.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.connList[conn]
	if !ok {
		return nil, subscriber.ErrNotFound
	}

	return sub, nil
}

func (r *repo) GetByMemberId(memberId string) (*subscriber.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.idList[memberId]
	if !ok {
		return nil, subscriber.ErrNotFound
	}

	return sub, nil
}

func (r *repo) GetByRoomId(roomId string) []*subscriber.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.roomList[roomId]
	subs := make([]*subscriber.Subscriber, 0, len(members))
	for _, sub := range members {
		subs = append(subs, sub)
	}

	return subs
}
