package storage

import (
	"chat-store/contract"
	"chat-store/domain/chat"
	"chat-store/domain/event"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const DefaultPageSize = 20

var (
	_ contract.CommentSink = (*CommentRepository)(nil)
	_ contract.IHistory    = (*CommentRepository)(nil)
)

// CommentRepository journals comments per room in BadgerDB so their
// history can be paged newest first.
type CommentRepository struct {
	db       *badger.DB
	log      *slog.Logger
	pageSize int
}

// OpenInMemory starts a Badger instance that lives as long as the process.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory journal: %w", err)
	}
	return db, nil
}

func NewCommentRepository(db *badger.DB, log *slog.Logger, pageSize int) *CommentRepository {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &CommentRepository{db: db, log: log, pageSize: pageSize}
}

// Seed journals the comments loaded at startup.
func (r *CommentRepository) Seed(datasets []chat.Dataset) error {
	wb := r.db.NewWriteBatch()
	for _, d := range datasets {
		for _, c := range d.Comments {
			bytes, err := json.Marshal(c)
			if err != nil {
				wb.Cancel()
				return fmt.Errorf("encoding comment %d: %w", c.ID, err)
			}
			if err = wb.Set(commentKey(d.Room.ID, c.ID), bytes); err != nil {
				wb.Cancel()
				return err
			}
		}
	}
	return wb.Flush()
}

func (r *CommentRepository) Consume(e event.CommentAppended) error {
	return r.StoreComment(e.Room, e.Comment)
}

// StoreComment persists a comment under "msg:{room_id}:{comment_id_padded}".
// Ids are padded to 19 digits so lexicographic order follows id order.
func (r *CommentRepository) StoreComment(room chat.RoomID, comment chat.Comment) error {
	bytes, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("encoding comment %d: %w", comment.ID, err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(commentKey(room, comment.ID), bytes)
	})
}

// GetComments pages the history of a room from the newest comment backwards.
// The returned cursor is nil once the oldest comment has been reached.
func (r *CommentRepository) GetComments(room chat.RoomID, cursor *string, limit int) ([]chat.Comment, *string, error) {
	if limit <= 0 || limit > r.pageSize {
		limit = r.pageSize
	}
	var values [][]byte
	var lastKey string
	hasMore := false

	err := r.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%d:", room)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Highest possible key of the room, then walk backwards
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()[prefixLen:]) == *cursor {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(values) == limit {
				hasMore = true
				r.log.Debug(fmt.Sprintf("Maximum of %d comments reached", limit))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	comments := make([]chat.Comment, 0, len(values))
	for _, v := range values {
		var c chat.Comment
		if err = json.Unmarshal(v, &c); err != nil {
			return nil, nil, fmt.Errorf("decoding comment: %w", err)
		}
		comments = append(comments, c)
	}
	if !hasMore {
		return comments, nil, nil
	}
	return comments, &lastKey, nil
}

func commentKey(room chat.RoomID, id int64) []byte {
	return []byte(fmt.Sprintf("msg:%d:%019d", room, id))
}
