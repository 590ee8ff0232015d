package event

import (
	"chat-store/domain/chat"
	"time"
)

// CommentAppended is emitted once a comment has been stored in a room history.
type CommentAppended struct {
	Room    chat.RoomID
	Comment chat.Comment
	At      time.Time
}
