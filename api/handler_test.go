package api

import (
	"bytes"
	"chat-store/domain/chat"
	"chat-store/domain/search"
	"chat-store/errors"
	"chat-store/mocks"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	store   *mocks.MockIChatStore
	index   *mocks.MockISearchIndex
	history *mocks.MockIHistory
	engine  *gin.Engine
}

func setup(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	f := fixture{
		store:   mocks.NewMockIChatStore(ctrl),
		index:   mocks.NewMockISearchIndex(ctrl),
		history: mocks.NewMockIHistory(ctrl),
	}
	h := NewHandler(slog.Default(), f.store, f.index, f.history, nil)
	f.engine = NewRouter(h, slog.Default())
	return f
}

func do(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, r)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHandler_ListRooms(t *testing.T) {
	req := require.New(t)
	f := setup(t)
	rooms := []chat.Room{{ID: 1, Name: "Product A"}, {ID: 2, Name: "Product B"}}
	f.store.EXPECT().Rooms().Return(rooms).Times(2)

	w, env := do(t, f.engine, http.MethodGet, "/api/rooms", nil)
	req.Equal(http.StatusOK, w.Code)
	req.Equal(0, env.Code)
	var got []chat.Room
	req.NoError(json.Unmarshal(env.Data, &got))
	req.Equal(rooms, got)

	w, env = do(t, f.engine, http.MethodGet, "/", nil)
	req.Equal(http.StatusOK, w.Code)
	req.Contains(string(env.Data), `"view":"home"`)
	req.NotEmpty(w.Header().Get(RequestIDHeader))
}

func TestHandler_OpenRoom(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(f fixture)
		wantStatus int
		wantCode   int
		wantMsg    string
	}{
		{
			name: "Existing room",
			path: "/chat/1",
			setup: func(f fixture) {
				f.store.EXPECT().Open(chat.RoomID(1)).
					Return(chat.Room{ID: 1, Name: "Product A"}, []chat.Comment{{ID: 7, Message: "hi"}}, nil)
			},
			wantStatus: http.StatusOK,
			wantMsg:    "ok",
		},
		{
			name: "Unknown room",
			path: "/chat/404",
			setup: func(f fixture) {
				f.store.EXPECT().Open(chat.RoomID(404)).
					Return(chat.Room{}, nil, errors.RoomNotFoundError{ID: 404})
			},
			wantStatus: http.StatusNotFound,
			wantCode:   codeRoomNotFound,
			wantMsg:    "Room with ID 404 not found",
		},
		{
			name:       "Non numeric room id",
			path:       "/chat/abc",
			setup:      func(fixture) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   codeInvalidPath,
		},
		{
			name:       "Negative room id",
			path:       "/chat/-1",
			setup:      func(fixture) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   codeInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f := setup(t)
			tt.setup(f)

			w, env := do(t, f.engine, http.MethodGet, tt.path, nil)
			req.Equal(tt.wantStatus, w.Code)
			req.Equal(tt.wantCode, env.Code)
			if tt.wantMsg != "" {
				req.Equal(tt.wantMsg, env.Message)
			}
		})
	}
}

func TestHandler_SendMessage(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		storeErr   error
		wantStatus int
		wantCode   int
		wantMsg    string
	}{
		{"Text message", map[string]any{"text": "hello"}, nil, http.StatusOK, 0, "ok"},
		{"Empty message", map[string]any{"text": " "}, errors.ErrEmptyMessage, http.StatusBadRequest, codeEmptyMessage, "Message cannot be empty"},
		{"Unknown room", map[string]any{"text": "hello"}, errors.RoomNotFoundError{ID: 1}, http.StatusNotFound, codeRoomNotFound, "Room with ID 1 not found"},
		{"No room selected", map[string]any{"text": "hello"}, errors.ErrNoRoomSelected, http.StatusConflict, codeNoRoomSelected, "No room selected"},
		{"Send failure", map[string]any{"text": "hello"}, errors.ErrSendFailure, http.StatusUnprocessableEntity, codeSendFailure, "Failed to send message"},
		{"Unexpected error", map[string]any{"text": "hello"}, fmt.Errorf("boom"), http.StatusInternalServerError, codeInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f := setup(t)
			f.store.EXPECT().Send(gomock.Any()).Return(chat.Comment{ID: 1, Message: "hello"}, tt.storeErr)

			w, env := do(t, f.engine, http.MethodPost, "/chat/1/messages", tt.body)
			req.Equal(tt.wantStatus, w.Code)
			req.Equal(tt.wantCode, env.Code)
			req.Equal(tt.wantMsg, env.Message)
		})
	}
}

func TestHandler_SendMessage_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"Malformed json", `{"text":`},
		{"Product without name", map[string]any{"product": map[string]any{"price": 3}}},
		{"Negative price", map[string]any{"product": map[string]any{"name": "Shoe", "price": -1}}},
		{"Attachment without url", map[string]any{"attachments": []map[string]any{{"filename": "a.png"}}}},
		{"Unknown attachment type", map[string]any{"attachments": []map[string]any{{"filename": "a", "url": "u", "type": "audio"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f := setup(t)

			w, env := do(t, f.engine, http.MethodPost, "/chat/1/messages", tt.body)
			req.Equal(http.StatusBadRequest, w.Code)
			req.Equal(codeInvalidJSON, env.Code)
		})
	}
}

func TestHandler_SendMessage_FillsAttachmentDefaults(t *testing.T) {
	req := require.New(t)
	f := setup(t)

	var got chat.SendMessageCommand
	f.store.EXPECT().Send(gomock.Any()).
		DoAndReturn(func(cmd chat.SendMessageCommand) (chat.Comment, error) {
			got = cmd
			return chat.Comment{ID: 1}, nil
		})

	body := map[string]any{
		"text":    "look",
		"product": map[string]any{"name": "Shoe", "price": 10, "image": "x"},
		"attachments": []map[string]any{
			{"filename": "doc.pdf", "url": "https://example.com/doc.pdf", "size": 12, "mime_type": "application/pdf; charset=binary"},
			{"id": "keep-me", "filename": "clip", "url": "u", "mime_type": "video/mp4", "type": "file"},
			{"filename": "blob", "url": "u"},
		},
	}
	w, _ := do(t, f.engine, http.MethodPost, "/chat/12/messages", body)
	req.Equal(http.StatusOK, w.Code)

	req.Equal(chat.RoomID(12), got.RoomID())
	req.Equal("look", got.Text)
	req.Equal(&chat.ProductMessage{Name: "Shoe", Price: 10, Image: "x"}, got.Product)
	req.Len(got.Attachments, 3)

	pdf := got.Attachments[0]
	_, err := uuid.Parse(pdf.ID)
	req.NoError(err)
	req.Equal(chat.AttachmentPDF, pdf.Type)
	req.Equal("application/pdf", pdf.MimeType)

	// Then explicit values win
	req.Equal("keep-me", got.Attachments[1].ID)
	req.Equal(chat.AttachmentFile, got.Attachments[1].Type)

	req.Equal(chat.AttachmentFile, got.Attachments[2].Type)
	req.Equal("application/octet-stream", got.Attachments[2].MimeType)
}

func TestHandler_ListMessages(t *testing.T) {
	req := require.New(t)
	f := setup(t)
	f.store.EXPECT().MessagesByRoomID(chat.RoomID(9)).Return([]chat.Comment{})

	w, env := do(t, f.engine, http.MethodGet, "/api/rooms/9/messages", nil)
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`[]`, string(env.Data))
}

func TestHandler_Search(t *testing.T) {
	req := require.New(t)
	f := setup(t)

	f.index.EXPECT().Search(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q search.Query) ([]search.Hit, error) {
			req.Equal("invoice", q.Terms)
			req.Equal(3, *q.RoomID)
			req.Equal("en", q.Lang)
			req.Equal(2, q.Limit)
			return []search.Hit{{Room: 3, CommentID: 5, Message: "invoice ready", Score: 1.2}}, nil
		})

	w, env := do(t, f.engine, http.MethodGet, "/api/rooms/3/search?q=invoice&lang=en&limit=2", nil)
	req.Equal(http.StatusOK, w.Code)
	var hits []search.Hit
	req.NoError(json.Unmarshal(env.Data, &hits))
	req.Len(hits, 1)
	req.Equal(int64(5), hits[0].CommentID)

	w, env = do(t, f.engine, http.MethodGet, "/api/rooms/3/search?q=x&limit=zero", nil)
	req.Equal(http.StatusBadRequest, w.Code)
	req.Equal(codeInvalidQuery, env.Code)
}

func TestHandler_Search_IndexFailure(t *testing.T) {
	req := require.New(t)
	f := setup(t)
	f.index.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("reader closed"))

	w, env := do(t, f.engine, http.MethodGet, "/api/rooms/3/search?q=invoice", nil)
	req.Equal(http.StatusInternalServerError, w.Code)
	req.Equal(codeInternal, env.Code)
}

func TestHandler_History(t *testing.T) {
	req := require.New(t)
	f := setup(t)
	next := "0000000000000000005"

	gomock.InOrder(
		f.history.EXPECT().GetComments(chat.RoomID(4), nil, 5).
			Return([]chat.Comment{{ID: 9}}, &next, nil),
		f.history.EXPECT().GetComments(chat.RoomID(4), &next, 0).
			Return([]chat.Comment{{ID: 4}}, nil, nil),
	)

	w, env := do(t, f.engine, http.MethodGet, "/api/rooms/4/history?limit=5", nil)
	req.Equal(http.StatusOK, w.Code)
	req.Contains(string(env.Data), `"next_cursor":"0000000000000000005"`)

	w, env = do(t, f.engine, http.MethodGet, "/api/rooms/4/history?cursor="+next, nil)
	req.Equal(http.StatusOK, w.Code)
	req.Contains(string(env.Data), `"next_cursor":null`)

	w, _ = do(t, f.engine, http.MethodGet, "/api/rooms/4/history?limit=-3", nil)
	req.Equal(http.StatusBadRequest, w.Code)
}

func TestHandler_Stats_WithoutMetrics(t *testing.T) {
	req := require.New(t)
	f := setup(t)
	f.store.EXPECT().Counts().Return(3, 6)

	w, env := do(t, f.engine, http.MethodGet, "/debug/stats", nil)
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"rooms":3,"comments":6}`, string(env.Data))
}

func TestRouter_Fallbacks(t *testing.T) {
	req := require.New(t)
	f := setup(t)

	w, env := do(t, f.engine, http.MethodGet, "/nowhere", nil)
	req.Equal(http.StatusNotFound, w.Code)
	req.Equal(codeRouteNotFound, env.Code)

	w, env = do(t, f.engine, http.MethodDelete, "/api/rooms", nil)
	req.Equal(http.StatusMethodNotAllowed, w.Code)
	req.Equal(codeMethodNotFound, env.Code)
}

func TestRecovery(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), Recovery(slog.Default()))
	engine.GET("/panic", func(*gin.Context) { panic("boom") })

	r := httptest.NewRequest(http.MethodGet, "/panic", nil)
	r.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, r)

	req.Equal(http.StatusInternalServerError, w.Code)
	req.Equal("req-1", w.Header().Get(RequestIDHeader))
	req.Contains(w.Body.String(), "internal error")
}
