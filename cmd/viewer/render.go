package main

import (
	"chat-store/domain/chat"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type printer struct {
	out     io.Writer
	colours bool
}

func (p printer) header(title string) {
	header := fmt.Sprintf("  ====== %s ======", title)
	if p.colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Fprintln(p.out, header)
}

func (p printer) failure(msg string) {
	if p.colours {
		msg = color.New(color.FgRed).Render(msg)
	}
	fmt.Fprintln(p.out, msg)
}

func (p printer) newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// rooms lists every room, marking the selected one.
func (p printer) rooms(rooms []chat.Room, selected *chat.RoomID) {
	p.header("Rooms")
	table := p.newTable([]string{"", "ID", "Name", "Participants"})
	for _, r := range rooms {
		marker := ""
		if selected != nil && *selected == r.ID {
			marker = ">"
		}
		table.Append([]string{marker, strconv.Itoa(int(r.ID)), r.Name, strconv.Itoa(len(r.Participants))})
	}
	table.Render()
}

func (p printer) messages(room chat.Room, comments []chat.Comment) {
	p.header(fmt.Sprintf("%s (#%d)", room.Name, room.ID))
	table := p.newTable([]string{"ID", "Time", "Sender", "Type", "Message", "Attachments"})
	for _, c := range comments {
		table.Append([]string{
			strconv.FormatInt(c.ID, 10),
			c.Timestamp,
			c.Sender,
			c.Type,
			c.Message,
			attachmentSummary(c.Attachments),
		})
	}
	table.Render()
}

func attachmentSummary(attachments []chat.Attachment) string {
	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		names = append(names, fmt.Sprintf("%s:%s", a.Type, a.Filename))
	}
	return strings.Join(names, ", ")
}
