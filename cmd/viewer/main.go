package main

import (
	"chat-store/dataset"
	"chat-store/domain/chat"
	"chat-store/router"
	"chat-store/store"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type options struct {
	path    string
	text    string
	product string
	price   float64
}

func main() {
	var opts options
	flag.StringVar(&opts.path, "path", "/", "Route to open, e.g. /chat/12456")
	flag.StringVar(&opts.text, "send", "", "Text to send to the opened room")
	flag.StringVar(&opts.product, "product", "", "Product name to attach to the message")
	flag.Float64Var(&opts.price, "price", 0, "Product price")
	flag.Parse()

	code, err := run(os.Stdout, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Viewer terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run navigates to opts.path on a fresh store, optionally sends a message, and prints the result.
func run(out io.Writer, opts options) (int, error) {
	_ = godotenv.Load()
	config, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	var datasets []chat.Dataset
	if config.DatasetPath == "" {
		datasets, err = dataset.Bundled()
	} else {
		datasets, err = dataset.LoadFile(config.DatasetPath)
	}
	if err != nil {
		return exitConfig, err
	}

	s := store.NewChatStore(log, datasets, store.WithSender(config.Sender))
	return view(s, printer{out: out, colours: config.Colours}, log, opts)
}

func view(s *store.ChatStore, p printer, log *slog.Logger, opts options) (int, error) {
	route, err := router.Navigate(s, opts.path)
	if err != nil {
		return exitRuntime, err
	}
	log.Debug("Route resolved", "view", route.View.String(), "room", route.RoomID)

	if msg, failed := s.ErrorMessage(); failed {
		p.failure(msg)
		return exitRuntime, nil
	}

	if route.View == router.ChatRoom && (opts.text != "" || opts.product != "") {
		var product *chat.ProductMessage
		if opts.product != "" {
			product = &chat.ProductMessage{Name: opts.product, Price: opts.price}
		}
		if !s.SendMessage(opts.text, product, nil) {
			msg, _ := s.ErrorMessage()
			p.failure(msg)
			return exitRuntime, nil
		}
	}

	var selected *chat.RoomID
	if id, ok := s.SelectedRoomID(); ok {
		selected = &id
	}
	p.rooms(s.Rooms(), selected)

	if room, ok := s.SelectedRoom(); ok {
		p.messages(room, s.CurrentMessages())
	}
	return exitOK, nil
}
