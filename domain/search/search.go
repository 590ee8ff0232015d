package search

import (
	"strconv"
	"strings"
)

const DefaultLimit = 10

// Query represents the structured parameters of a message search.
// It decouples the raw input from what the index engine needs.
type Query struct {
	RawInput string // The original input from the user
	Terms    string // The actual text to search in message bodies
	Lang     string // ISO 639-1 filter, empty for any language
	RoomID   *int   // Target room, nil for every room
	Limit    int
}

// Hit is one comment matched by a query.
type Hit struct {
	Room      int     `json:"room"`
	CommentID int64   `json:"comment_id"`
	Message   string  `json:"message"`
	Sender    string  `json:"sender"`
	Lang      string  `json:"lang,omitempty"`
	Score     float64 `json:"score"`
}

// NewSearchQuery parses a raw string to extract command-line style arguments.
// Example: /find "invoice" --room 12 --lang en --limit 5
func NewSearchQuery(input string) Query {
	query := Query{
		RawInput: input,
		Limit:    DefaultLimit,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "room":
				if id, err := strconv.Atoi(val); err == nil && id >= 0 {
					query.RoomID = &id
				}
			case "limit":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = n
				}
			case "lang":
				query.Lang = strings.ToLower(val)
			}
			i++
			continue
		}

		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, strings.Trim(part, `"`))
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
