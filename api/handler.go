// Package api serves the chat store over HTTP with gin.
package api

import (
	"chat-store/contract"
	"chat-store/domain/chat"
	"chat-store/domain/mimetypes"
	"chat-store/domain/search"
	"chat-store/errors"
	"chat-store/observability"
	"chat-store/router"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Metrics is the part of the monitoring manager the handlers feed.
type Metrics interface {
	IncrRejected()
	IncrSearches()
	Refresh() observability.MonitoringStats
}

type Handler struct {
	log     *slog.Logger
	store   contract.IChatStore
	index   contract.ISearchIndex
	history contract.IHistory
	metrics Metrics
}

func NewHandler(
	log *slog.Logger,
	store contract.IChatStore,
	index contract.ISearchIndex,
	history contract.IHistory,
	metrics Metrics,
) *Handler {
	return &Handler{log: log, store: store, index: index, history: history, metrics: metrics}
}

func (h *Handler) Home(c *gin.Context) {
	ok(c, gin.H{"view": router.Home.String(), "rooms": h.store.Rooms()})
}

func (h *Handler) ListRooms(c *gin.Context) {
	ok(c, h.store.Rooms())
}

func (h *Handler) OpenRoom(c *gin.Context) {
	roomID, valid := h.roomID(c)
	if !valid {
		return
	}
	room, messages, err := h.store.Open(roomID)
	if err != nil {
		h.failWith(c, err)
		return
	}
	ok(c, gin.H{"view": router.ChatRoom.String(), "room": room, "messages": messages})
}

func (h *Handler) ListMessages(c *gin.Context) {
	roomID, valid := h.roomID(c)
	if !valid {
		return
	}
	ok(c, h.store.MessagesByRoomID(roomID))
}

type productReq struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"gte=0"`
	Image string  `json:"image"`
}

type attachmentReq struct {
	ID           string   `json:"id"`
	Type         string   `json:"type" binding:"omitempty,oneof=image video pdf file"`
	Filename     string   `json:"filename" binding:"required"`
	URL          string   `json:"url" binding:"required"`
	Size         int64    `json:"size" binding:"gte=0"`
	MimeType     string   `json:"mime_type"`
	ThumbnailURL *string  `json:"thumbnail_url"`
	Duration     *float64 `json:"duration"`
	PageCount    *int     `json:"page_count"`
}

type sendMessageReq struct {
	Text        string          `json:"text"`
	Product     *productReq     `json:"product"`
	Attachments []attachmentReq `json:"attachments" binding:"dive"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	roomID, valid := h.roomID(c)
	if !valid {
		return
	}
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug("Invalid send request", "error", err)
		fail(c, http.StatusBadRequest, codeInvalidJSON, "invalid json")
		return
	}

	comment, err := h.store.Send(toCommand(roomID, req))
	if err != nil {
		if h.metrics != nil {
			h.metrics.IncrRejected()
		}
		h.failWith(c, err)
		return
	}
	ok(c, comment)
}

func (h *Handler) Search(c *gin.Context) {
	roomID, valid := h.roomID(c)
	if !valid {
		return
	}
	query := search.NewSearchQuery(c.Query("q"))
	query.RoomID = lo.ToPtr(int(roomID))
	if lang := c.Query("lang"); lang != "" {
		query.Lang = lang
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			fail(c, http.StatusBadRequest, codeInvalidQuery, "invalid limit")
			return
		}
		query.Limit = limit
	}

	hits, err := h.index.Search(c.Request.Context(), query)
	if err != nil {
		h.log.Error("Search failed", "room", roomID, "error", err)
		fail(c, http.StatusInternalServerError, codeInternal, "search failed")
		return
	}
	if h.metrics != nil {
		h.metrics.IncrSearches()
	}
	ok(c, hits)
}

func (h *Handler) History(c *gin.Context) {
	roomID, valid := h.roomID(c)
	if !valid {
		return
	}
	cmd := chat.GetMessageCommand{Room: int(roomID)}
	if raw := c.Query("cursor"); raw != "" {
		cmd.Cursor = &raw
	}
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 {
			fail(c, http.StatusBadRequest, codeInvalidQuery, "invalid limit")
			return
		}
		cmd.Limit = l
	}

	comments, next, err := h.history.GetComments(cmd.RoomID(), cmd.Cursor, cmd.Limit)
	if err != nil {
		h.log.Error("History failed", "room", roomID, "error", err)
		fail(c, http.StatusInternalServerError, codeInternal, "history failed")
		return
	}
	ok(c, gin.H{"comments": comments, "next_cursor": next})
}

func (h *Handler) Stats(c *gin.Context) {
	if h.metrics == nil {
		rooms, comments := h.store.Counts()
		ok(c, gin.H{"rooms": rooms, "comments": comments})
		return
	}
	ok(c, h.metrics.Refresh())
}

func (h *Handler) roomID(c *gin.Context) (chat.RoomID, bool) {
	roomID, err := router.ParseRoomID(c.Param("roomId"))
	if err != nil {
		fail(c, http.StatusBadRequest, codeInvalidPath, err.Error())
		return 0, false
	}
	return roomID, true
}

// failWith maps store errors to HTTP responses, keeping the store's message.
func (h *Handler) failWith(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, errors.ErrRoomNotFound):
		fail(c, http.StatusNotFound, codeRoomNotFound, err.Error())
	case stderrors.Is(err, errors.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, codeEmptyMessage, err.Error())
	case stderrors.Is(err, errors.ErrNoRoomSelected):
		fail(c, http.StatusConflict, codeNoRoomSelected, err.Error())
	case stderrors.Is(err, errors.ErrSendFailure):
		fail(c, http.StatusUnprocessableEntity, codeSendFailure, err.Error())
	default:
		h.log.Error("Unexpected store error", "error", err)
		fail(c, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func toCommand(roomID chat.RoomID, req sendMessageReq) chat.SendMessageCommand {
	cmd := chat.SendMessageCommand{Room: int(roomID), Text: req.Text}
	if req.Product != nil {
		cmd.Product = &chat.ProductMessage{
			Name:  req.Product.Name,
			Price: req.Product.Price,
			Image: req.Product.Image,
		}
	}
	cmd.Attachments = lo.Map(req.Attachments, func(a attachmentReq, _ int) chat.Attachment {
		return toAttachment(a)
	})
	return cmd
}

// toAttachment fills the id, MIME type and kind a client may leave out.
func toAttachment(a attachmentReq) chat.Attachment {
	id := strings.TrimSpace(a.ID)
	if id == "" {
		id = uuid.NewString()
	}
	mimeType := string(mimetypes.Canonical(a.MimeType))
	if mimeType == string(mimetypes.Unknown) || mimeType == "" {
		mimeType = string(mimetypes.OctetStream)
	}
	kind := chat.AttachmentType(a.Type)
	if kind == "" {
		kind = mimetypes.KindOf(mimeType)
	}
	return chat.Attachment{
		ID:           id,
		Type:         kind,
		Filename:     a.Filename,
		URL:          a.URL,
		Size:         a.Size,
		MimeType:     mimeType,
		ThumbnailURL: a.ThumbnailURL,
		Duration:     a.Duration,
		PageCount:    a.PageCount,
	}
}
