// Package index keeps an in-memory full text index of every comment so rooms
// can be searched by message content.
package index

import (
	"chat-store/contract"
	"chat-store/domain/chat"
	"chat-store/domain/event"
	"chat-store/domain/search"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/blugelabs/bluge"
)

const (
	fieldRoom      = "room"
	fieldCommentID = "comment_id"
	fieldMessage   = "message"
	fieldSender    = "sender"
	fieldLang      = "lang"
)

var (
	_ contract.CommentSink  = (*CommentIndex)(nil)
	_ contract.ISearchIndex = (*CommentIndex)(nil)
)

type CommentIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
	limit  int
}

// NewCommentIndex opens an index that lives only in process memory.
func NewCommentIndex(log *slog.Logger, limit int) (*CommentIndex, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("opening comment index: %w", err)
	}
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	return &CommentIndex{writer: writer, log: log, limit: limit}, nil
}

// IndexDatasets indexes the comments loaded at startup in one batch.
func (i *CommentIndex) IndexDatasets(datasets []chat.Dataset) error {
	batch := bluge.NewBatch()
	count := 0
	for _, d := range datasets {
		for _, c := range d.Comments {
			doc := toDocument(d.Room.ID, c)
			batch.Update(doc.ID(), doc)
			count++
		}
	}
	if err := i.writer.Batch(batch); err != nil {
		return fmt.Errorf("indexing %d comments: %w", count, err)
	}
	i.log.Debug("Comments indexed", "count", count)
	return nil
}

func (i *CommentIndex) Consume(e event.CommentAppended) error {
	doc := toDocument(e.Room, e.Comment)
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("indexing comment %d: %w", e.Comment.ID, err)
	}
	return nil
}

// Search matches the query terms against message bodies, best score first.
func (i *CommentIndex) Search(ctx context.Context, query search.Query) ([]search.Hit, error) {
	terms := strings.TrimSpace(query.Terms)
	if terms == "" {
		return []search.Hit{}, nil
	}
	limit := query.Limit
	if limit <= 0 || limit > i.limit {
		limit = i.limit
	}

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField(fieldMessage))
	if query.RoomID != nil {
		q.AddMust(bluge.NewTermQuery(strconv.Itoa(*query.RoomID)).SetField(fieldRoom))
	}
	if query.Lang != "" {
		q.AddMust(bluge.NewTermQuery(strings.ToLower(query.Lang)).SetField(fieldLang))
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening index reader: %w", err)
	}
	defer reader.Close()

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", terms, err)
	}

	hits := make([]search.Hit, 0, limit)
	match, err := matches.Next()
	for err == nil && match != nil {
		hit := search.Hit{Score: match.Score}
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case fieldRoom:
				hit.Room, _ = strconv.Atoi(string(value))
			case fieldCommentID:
				hit.CommentID, _ = strconv.ParseInt(string(value), 10, 64)
			case fieldMessage:
				hit.Message = string(value)
			case fieldSender:
				hit.Sender = string(value)
			case fieldLang:
				hit.Lang = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
		match, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("reading search results: %w", err)
	}
	return hits, nil
}

func (i *CommentIndex) Close() error {
	return i.writer.Close()
}

func toDocument(room chat.RoomID, c chat.Comment) *bluge.Document {
	doc := bluge.NewDocument(fmt.Sprintf("%d:%d", room, c.ID)).
		AddField(bluge.NewKeywordField(fieldRoom, strconv.Itoa(int(room))).StoreValue()).
		AddField(bluge.NewKeywordField(fieldCommentID, strconv.FormatInt(c.ID, 10)).StoreValue()).
		AddField(bluge.NewTextField(fieldMessage, c.Message).StoreValue()).
		AddField(bluge.NewKeywordField(fieldSender, c.Sender).StoreValue())
	if lang := DetectLang(c.Message); lang != "" {
		doc.AddField(bluge.NewKeywordField(fieldLang, lang).StoreValue())
	}
	return doc
}

// DetectLang returns the ISO 639-1 code of text, empty when unknown.
func DetectLang(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return ""
	}
	return info.Lang.Iso6391()
}
