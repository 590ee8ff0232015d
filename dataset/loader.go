// Package dataset loads the static chat source the store is built from.
// The bundled document is embedded in the binary; LoadFile reads the same
// format from disk for tooling.
package dataset

import (
	"bytes"
	"chat-store/domain/chat"
	"chat-store/errors"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
)

//go:embed chat_data.json
var bundled []byte

var validate = validator.New()

// Document is the top-level shape of the source.
type Document struct {
	Results []chat.Dataset `json:"results" validate:"dive"`
}

// Bundled returns a fresh copy of the embedded datasets.
func Bundled() ([]chat.Dataset, error) {
	return Load(bytes.NewReader(bundled))
}

func LoadFile(path string) ([]chat.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a source document.
// Room ids must be unique and comment ids unique within their room.
func Load(r io.Reader) ([]chat.Dataset, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidDataset, err)
	}
	if err := Validate(doc.Results); err != nil {
		return nil, err
	}
	for i := range doc.Results {
		if doc.Results[i].Comments == nil {
			doc.Results[i].Comments = []chat.Comment{}
		}
		for j := range doc.Results[i].Comments {
			if doc.Results[i].Comments[j].Attachments == nil {
				doc.Results[i].Comments[j].Attachments = []chat.Attachment{}
			}
		}
	}
	return doc.Results, nil
}

func Validate(datasets []chat.Dataset) error {
	if err := validate.Struct(Document{Results: datasets}); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidDataset, err)
	}

	rooms := make(map[chat.RoomID]struct{}, len(datasets))
	for _, d := range datasets {
		if _, ok := rooms[d.Room.ID]; ok {
			return fmt.Errorf("%w: %d", errors.ErrDuplicateRoom, d.Room.ID)
		}
		rooms[d.Room.ID] = struct{}{}

		comments := make(map[int64]struct{}, len(d.Comments))
		for _, c := range d.Comments {
			if _, ok := comments[c.ID]; ok {
				return fmt.Errorf("%w: room %d has comment %d twice", errors.ErrInvalidDataset, d.Room.ID, c.ID)
			}
			comments[c.ID] = struct{}{}
		}
	}
	return nil
}
