package chat

type RoomID int

// Room is the display metadata of a chat channel.
// Its ID is externally assigned and stable.
type Room struct {
	Name         string        `json:"name" validate:"required"`
	ID           RoomID        `json:"id" validate:"gte=0"`
	ImageURL     string        `json:"image_url"`
	Participants []Participant `json:"participant" validate:"dive"`
}

// Dataset pairs a room with its chronological, append-only comment history.
type Dataset struct {
	Room     Room      `json:"room"`
	Comments []Comment `json:"comments" validate:"dive"`
}

func NewDataset(room Room, comments ...Comment) *Dataset {
	if comments == nil {
		comments = []Comment{}
	}
	return &Dataset{Room: room, Comments: comments}
}

// Append adds a comment at the end of the history.
func (d *Dataset) Append(comment Comment) {
	d.Comments = append(d.Comments, comment)
}

// LastCommentID returns the highest comment id, or 0 for an empty history.
func (d *Dataset) LastCommentID() int64 {
	var last int64
	for _, c := range d.Comments {
		if c.ID > last {
			last = c.ID
		}
	}
	return last
}
