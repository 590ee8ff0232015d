package errors

import "fmt"

// Messages below are shown to the end user as-is.
var (
	ErrRoomNotFound   = fmt.Errorf("room not found")
	ErrNoRoomSelected = fmt.Errorf("No room selected")
	ErrEmptyMessage   = fmt.Errorf("Message cannot be empty")
	ErrSendFailure    = fmt.Errorf("Failed to send message")

	ErrDuplicateRoom   = fmt.Errorf("duplicate room id")
	ErrInvalidDataset  = fmt.Errorf("invalid dataset")
	ErrInvalidRoomPath = fmt.Errorf("invalid room path")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
)

// RoomNotFoundError carries the missing room id.
type RoomNotFoundError struct {
	ID int
}

func (e RoomNotFoundError) Error() string {
	return fmt.Sprintf("Room with ID %d not found", e.ID)
}

func (e RoomNotFoundError) Is(target error) bool {
	return target == ErrRoomNotFound
}
