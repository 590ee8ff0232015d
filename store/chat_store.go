// Package store holds the chat datasets loaded at startup and the view
// state built on top of them: the selected room and the last error.
//
// A ChatStore assumes a single caller at a time. Hosts serving concurrent
// requests go through Guarded.
package store

import (
	"chat-store/contract"
	"chat-store/domain/chat"
	"chat-store/domain/event"
	"chat-store/errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	DefaultSender = "agent@mail.com"
	isoMillis     = "2006-01-02T15:04:05.000Z07:00"
)

// ChatStore owns the datasets and the view state derived from them.
type ChatStore struct {
	log      *slog.Logger
	datasets []*chat.Dataset
	selected *chat.RoomID
	err      error

	sender string
	now    func() time.Time
	ids    IDGenerator
	censor contract.Censor
	sinks  []contract.CommentSink
}

// Option customizes a ChatStore at construction.
type Option func(*ChatStore)

// WithSender sets the sender of outgoing comments; blank values keep DefaultSender.
func WithSender(sender string) Option {
	return func(s *ChatStore) {
		if strings.TrimSpace(sender) != "" {
			s.sender = sender
		}
	}
}

// WithClock replaces time.Now for timestamps and default ids.
func WithClock(now func() time.Time) Option {
	return func(s *ChatStore) { s.now = now }
}

// WithIDGenerator replaces the clock based id generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *ChatStore) { s.ids = ids }
}

// WithCensor masks forbidden words of outgoing text before it is stored.
func WithCensor(censor contract.Censor) Option {
	return func(s *ChatStore) { s.censor = censor }
}

func WithSinks(sinks ...contract.CommentSink) Option {
	return func(s *ChatStore) { s.sinks = append(s.sinks, sinks...) }
}

// NewChatStore takes ownership of datasets; their order is kept for Rooms.
// Room ids are expected to be unique, see dataset.Validate.
func NewChatStore(log *slog.Logger, datasets []chat.Dataset, opts ...Option) *ChatStore {
	if log == nil {
		log = slog.Default()
	}
	s := &ChatStore{
		log:      log,
		datasets: make([]*chat.Dataset, 0, len(datasets)),
		sender:   DefaultSender,
		now:      time.Now,
	}
	var lastID int64
	for i := range datasets {
		d := chat.NewDataset(datasets[i].Room, datasets[i].Comments...)
		s.datasets = append(s.datasets, d)
		lastID = max(lastID, d.LastCommentID())
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewClockID(s.now, lastID)
	}
	return s
}

// Rooms lists every room in dataset order.
func (s *ChatStore) Rooms() []chat.Room {
	return lo.Map(s.datasets, func(d *chat.Dataset, _ int) chat.Room {
		return cloneRoom(d.Room)
	})
}

func (s *ChatStore) SelectedRoomID() (chat.RoomID, bool) {
	if s.selected == nil {
		return 0, false
	}
	return *s.selected, true
}

func (s *ChatStore) SelectedRoom() (chat.Room, bool) {
	if s.selected == nil {
		return chat.Room{}, false
	}
	d, ok := s.find(*s.selected)
	if !ok {
		return chat.Room{}, false
	}
	return cloneRoom(d.Room), true
}

// CurrentMessages returns the history of the selected room, empty when none is selected.
func (s *ChatStore) CurrentMessages() []chat.Comment {
	if s.selected == nil {
		return []chat.Comment{}
	}
	return s.MessagesByRoomID(*s.selected)
}

// MessagesByRoomID never changes the selection.
func (s *ChatStore) MessagesByRoomID(roomID chat.RoomID) []chat.Comment {
	d, ok := s.find(roomID)
	if !ok {
		return []chat.Comment{}
	}
	return lo.Map(d.Comments, func(c chat.Comment, _ int) chat.Comment {
		return cloneComment(c)
	})
}

// Err is the outcome of the last operation, nil on success.
func (s *ChatStore) Err() error {
	return s.err
}

func (s *ChatStore) ErrorMessage() (string, bool) {
	if s.err == nil {
		return "", false
	}
	return s.err.Error(), true
}

// SelectRoom focuses an existing room. An unknown id keeps the previous
// selection and records a RoomNotFoundError.
func (s *ChatStore) SelectRoom(roomID chat.RoomID) {
	if _, ok := s.find(roomID); !ok {
		s.err = errors.RoomNotFoundError{ID: int(roomID)}
		s.log.Debug("Room not found", "room", roomID)
		return
	}
	s.selected = &roomID
	s.err = nil
}

// SendMessage appends a comment to the selected room.
// It reports false and records the reason in Err when nothing was appended.
func (s *ChatStore) SendMessage(text string, product *chat.ProductMessage, attachments []chat.Attachment) bool {
	if s.selected == nil {
		s.err = errors.ErrNoRoomSelected
		return false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" && product == nil && len(attachments) == 0 {
		s.err = errors.ErrEmptyMessage
		return false
	}

	roomID := *s.selected
	comment, err := s.synthesize(trimmed, product, attachments)
	if err != nil {
		s.log.Warn("Message rejected", "room", roomID, "error", err)
		s.err = errors.ErrSendFailure
		return false
	}

	d, ok := s.find(roomID)
	if !ok {
		s.log.Error("Selected room has no dataset", "room", roomID)
		s.err = errors.ErrSendFailure
		return false
	}
	d.Append(comment)
	s.err = nil

	s.notify(event.CommentAppended{Room: roomID, Comment: cloneComment(comment), At: s.now().UTC()})
	return true
}

func (s *ChatStore) synthesize(text string, product *chat.ProductMessage, attachments []chat.Attachment) (comment chat.Comment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while building comment: %v", r)
		}
	}()
	return s.newComment(text, product, attachments), nil
}

// newComment builds the comment for an accepted input. Products and
// attachments are taken as given; request validation belongs to the callers.
func (s *ChatStore) newComment(text string, product *chat.ProductMessage, attachments []chat.Attachment) chat.Comment {
	if s.censor != nil && text != "" {
		var words []string
		text, words = s.censor.Censor(text)
		if len(words) > 0 {
			s.log.Info("Censored outgoing message", "words", len(words))
		}
	}

	comment := chat.Comment{
		ID:          s.ids.Next(),
		Type:        chat.CommentText,
		Message:     text,
		Sender:      s.sender,
		Timestamp:   s.now().UTC().Format(isoMillis),
		Attachments: []chat.Attachment{},
	}
	if len(attachments) > 0 {
		comment.Attachments = lo.Map(attachments, func(a chat.Attachment, _ int) chat.Attachment {
			return cloneAttachment(a)
		})
		comment.Type = string(attachments[0].Type)
	}
	if product != nil {
		comment.Type = chat.CommentProduct
		if text == "" {
			comment.Message = product.Name
		}
	}
	return comment
}

func (s *ChatStore) notify(e event.CommentAppended) {
	for _, sink := range s.sinks {
		if err := sink.Consume(e); err != nil {
			s.log.Warn("Sink failed to consume comment", "room", e.Room, "comment", e.Comment.ID, "error", err)
		}
	}
}

func (s *ChatStore) find(roomID chat.RoomID) (*chat.Dataset, bool) {
	return lo.Find(s.datasets, func(d *chat.Dataset) bool {
		return d.Room.ID == roomID
	})
}

func cloneRoom(room chat.Room) chat.Room {
	room.Participants = slices.Clone(room.Participants)
	return room
}

// cloneComment copies the attachments and their optional fields so the
// stored history never shares memory with callers.
func cloneComment(c chat.Comment) chat.Comment {
	if c.Attachments == nil {
		return c
	}
	c.Attachments = lo.Map(c.Attachments, func(a chat.Attachment, _ int) chat.Attachment {
		return cloneAttachment(a)
	})
	return c
}

func cloneAttachment(a chat.Attachment) chat.Attachment {
	if a.ThumbnailURL != nil {
		a.ThumbnailURL = lo.ToPtr(*a.ThumbnailURL)
	}
	if a.Duration != nil {
		a.Duration = lo.ToPtr(*a.Duration)
	}
	if a.PageCount != nil {
		a.PageCount = lo.ToPtr(*a.PageCount)
	}
	return a
}
