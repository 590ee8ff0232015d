package store

import (
	"chat-store/contract"
	"chat-store/domain/chat"
	"sync"
)

var _ contract.IChatStore = (*Guarded)(nil)

// Guarded serializes access to a ChatStore for multi-threaded hosts.
type Guarded struct {
	mu    sync.Mutex
	store *ChatStore
}

func NewGuarded(s *ChatStore) *Guarded {
	return &Guarded{store: s}
}

// Do runs fn with exclusive access to the store.
func (g *Guarded) Do(fn func(s *ChatStore)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.store)
}

func (g *Guarded) Rooms() []chat.Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Rooms()
}

// Open selects the room and returns it with its history.
func (g *Guarded) Open(roomID chat.RoomID) (chat.Room, []chat.Comment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.store.SelectRoom(roomID)
	if err := g.store.Err(); err != nil {
		return chat.Room{}, nil, err
	}
	room, _ := g.store.SelectedRoom()
	return room, g.store.CurrentMessages(), nil
}

func (g *Guarded) MessagesByRoomID(roomID chat.RoomID) []chat.Comment {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.MessagesByRoomID(roomID)
}

// Send selects the target room then appends the message, returning the new comment.
func (g *Guarded) Send(cmd chat.SendMessageCommand) (chat.Comment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.store.SelectRoom(cmd.RoomID())
	if err := g.store.Err(); err != nil {
		return chat.Comment{}, err
	}
	if !g.store.SendMessage(cmd.Text, cmd.Product, cmd.Attachments) {
		return chat.Comment{}, g.store.Err()
	}
	messages := g.store.CurrentMessages()
	return messages[len(messages)-1], nil
}

func (g *Guarded) Counts() (rooms int, comments int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, d := range g.store.datasets {
		comments += len(d.Comments)
	}
	return len(g.store.datasets), comments
}
