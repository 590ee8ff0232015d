// Package router maps browser paths to views and turns the room segment of
// "/chat/:roomId" into a room selection.
package router

import (
	"chat-store/domain/chat"
	"chat-store/errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type View int

const (
	Home View = iota
	ChatRoom
)

const (
	HomePath     = "/"
	ChatRoomPath = "/chat/:roomId"
)

var roomIDPattern = regexp.MustCompile(`^\d+$`)

func (v View) String() string {
	switch v {
	case Home:
		return "home"
	case ChatRoom:
		return "chatRoom"
	default:
		return "unknown"
	}
}

// Route is a resolved path. RoomID is only meaningful for ChatRoom.
type Route struct {
	View   View
	RoomID chat.RoomID
}

// RoomSelector is the part of the store the router drives.
type RoomSelector interface {
	SelectRoom(roomID chat.RoomID)
}

// ParseRoomID accepts digits only, so "-1", "1e3" or " 7" never reach the store.
func ParseRoomID(raw string) (chat.RoomID, error) {
	if !roomIDPattern.MatchString(raw) {
		return 0, fmt.Errorf("%w: room id %q", errors.ErrInvalidRoomPath, raw)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: room id %q: %v", errors.ErrInvalidRoomPath, raw, err)
	}
	return chat.RoomID(id), nil
}

// Resolve matches path against the home and chat room routes.
func Resolve(path string) (Route, error) {
	trimmed := strings.TrimSuffix(path, "/")
	if trimmed == "" {
		return Route{View: Home}, nil
	}
	raw, ok := strings.CutPrefix(trimmed, "/chat/")
	if !ok || strings.Contains(raw, "/") {
		return Route{}, fmt.Errorf("%w: %s", errors.ErrInvalidRoomPath, path)
	}
	id, err := ParseRoomID(raw)
	if err != nil {
		return Route{}, err
	}
	return Route{View: ChatRoom, RoomID: id}, nil
}

// Navigate resolves path and selects the room it names, if any.
// Whether the room exists is reported by the store, not by the router.
func Navigate(selector RoomSelector, path string) (Route, error) {
	route, err := Resolve(path)
	if err != nil {
		return Route{}, err
	}
	if route.View == ChatRoom {
		selector.SelectRoom(route.RoomID)
	}
	return route, nil
}
