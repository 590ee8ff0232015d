//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-store/domain/chat"
	"chat-store/domain/event"
	"chat-store/domain/search"
	"context"
)

// CommentSink receives every comment once it has been appended.
// Sinks are derived projections: their failures never undo an append.
type CommentSink interface {
	Consume(e event.CommentAppended) error
}

type Censor interface {
	Censor(original string) (string, []string)
}

// IChatStore is the view of the store used by concurrent hosts.
// Each method runs atomically against the underlying state.
type IChatStore interface {
	Rooms() []chat.Room
	Open(roomID chat.RoomID) (chat.Room, []chat.Comment, error)
	MessagesByRoomID(roomID chat.RoomID) []chat.Comment
	Send(cmd chat.SendMessageCommand) (chat.Comment, error)
	Counts() (rooms int, comments int)
}

type ISearchIndex interface {
	Search(ctx context.Context, query search.Query) ([]search.Hit, error)
}

type IHistory interface {
	GetComments(room chat.RoomID, cursor *string, limit int) ([]chat.Comment, *string, error)
}
