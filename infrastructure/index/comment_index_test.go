package index

import (
	"chat-store/domain/chat"
	"chat-store/domain/event"
	"chat-store/domain/search"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const (
	english = "The delivery of my running shoes was delayed by three weeks and nobody answered my emails"
	french  = "La livraison de mes chaussures a pris trois semaines et personne ne répond à mes messages"
)

func setupIndex(t *testing.T) *CommentIndex {
	t.Helper()
	idx, err := NewCommentIndex(logs.GetLoggerFromLevel(slog.LevelDebug), 10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func text(id int64, message string) chat.Comment {
	return chat.Comment{ID: id, Type: chat.CommentText, Message: message, Sender: "customer@mail.com", Attachments: []chat.Attachment{}}
}

func TestCommentIndex_SearchLoadedComments(t *testing.T) {
	req := require.New(t)
	idx := setupIndex(t)
	ctx := context.Background()

	req.NoError(idx.IndexDatasets([]chat.Dataset{
		{Room: chat.Room{ID: 1}, Comments: []chat.Comment{text(1, "Is the invoice ready?"), text(2, "Shipping takes two days")}},
		{Room: chat.Room{ID: 2}, Comments: []chat.Comment{text(3, "Please resend the invoice")}},
	}))

	// When searching across every room
	hits, err := idx.Search(ctx, search.Query{Terms: "INVOICE", Limit: 10})
	req.NoError(err)

	// Then both rooms match, case insensitively
	req.Len(hits, 2)
	req.ElementsMatch([]int64{1, 3}, lo.Map(hits, func(h search.Hit, _ int) int64 { return h.CommentID }))
	for _, h := range hits {
		req.Positive(h.Score)
		req.Equal("customer@mail.com", h.Sender)
	}

	// Then room filtering isolates the results
	hits, err = idx.Search(ctx, search.Query{Terms: "invoice", RoomID: lo.ToPtr(2)})
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(2, hits[0].Room)
	req.Equal("Please resend the invoice", hits[0].Message)
}

func TestCommentIndex_ConsumeMakesCommentSearchable(t *testing.T) {
	req := require.New(t)
	idx := setupIndex(t)
	ctx := context.Background()

	hits, err := idx.Search(ctx, search.Query{Terms: "refund"})
	req.NoError(err)
	req.Empty(hits)

	req.NoError(idx.Consume(event.CommentAppended{Room: 3, Comment: text(42, "I want a refund"), At: time.Now()}))

	hits, err = idx.Search(ctx, search.NewSearchQuery("refund --room 3"))
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(int64(42), hits[0].CommentID)
	req.Equal(3, hits[0].Room)
}

func TestCommentIndex_LanguageFilter(t *testing.T) {
	req := require.New(t)
	idx := setupIndex(t)
	ctx := context.Background()

	req.NoError(idx.IndexDatasets([]chat.Dataset{
		{Room: chat.Room{ID: 1}, Comments: []chat.Comment{text(1, english+" shoes"), text(2, french+" shoes")}},
	}))

	lang := DetectLang(english + " shoes")
	req.NotEmpty(lang)

	hits, err := idx.Search(ctx, search.Query{Terms: "shoes", Lang: lang})
	req.NoError(err)
	req.NotEmpty(hits)
	for _, h := range hits {
		req.Equal(lang, h.Lang)
	}
}

func TestCommentIndex_LimitAndEmptyTerms(t *testing.T) {
	req := require.New(t)
	idx := setupIndex(t)
	ctx := context.Background()

	var comments []chat.Comment
	for i := int64(1); i <= 15; i++ {
		comments = append(comments, text(i, "order status"))
	}
	req.NoError(idx.IndexDatasets([]chat.Dataset{{Room: chat.Room{ID: 1}, Comments: comments}}))

	hits, err := idx.Search(ctx, search.Query{Terms: "order", Limit: 3})
	req.NoError(err)
	req.Len(hits, 3)

	// Then the index limit caps larger requests
	hits, err = idx.Search(ctx, search.Query{Terms: "order", Limit: 100})
	req.NoError(err)
	req.Len(hits, 10)

	hits, err = idx.Search(ctx, search.Query{Terms: "   "})
	req.NoError(err)
	req.Empty(hits)
}

func TestDetectLang(t *testing.T) {
	req := require.New(t)
	req.Empty(DetectLang(""))
	req.Empty(DetectLang("   "))
	req.Equal("en", DetectLang(english))
	req.Equal("fr", DetectLang(french))
}
