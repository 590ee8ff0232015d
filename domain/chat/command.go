package chat

// SendMessageCommand targets a room explicitly; the store still
// requires the room to be selected before sending.
type SendMessageCommand struct {
	Room        int
	Text        string
	Product     *ProductMessage
	Attachments []Attachment
}

func (p SendMessageCommand) RoomID() RoomID {
	return RoomID(p.Room)
}

// GetMessageCommand pages a room history; a nil Cursor starts at the newest comment.
type GetMessageCommand struct {
	Room   int
	Cursor *string
	Limit  int
}

func (p GetMessageCommand) RoomID() RoomID {
	return RoomID(p.Room)
}
