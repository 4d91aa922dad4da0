package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/postbox/internal/api"
)

var errInvalidID = errors.New("message id must be a positive number")

const timeLayout = "2006-01-02 15:04"

func (a *App) List(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	defer a.syncSession()

	sent, received, err := a.client.ListMessages(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Received:")
	printSummaries(a.out, sortedSummaries(received), "from")
	fmt.Fprintln(a.out, "Sent:")
	printSummaries(a.out, sortedSummaries(sent), "to")
	return nil
}

func (a *App) Unread(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	defer a.syncSession()

	unread, err := a.client.ListUnread(ctx)
	if err != nil {
		return err
	}

	if len(unread) == 0 {
		fmt.Fprintln(a.out, "No unread messages")
		return nil
	}
	printSummaries(a.out, sortedSummaries(unread), "from")
	return nil
}

// Send prompts for the receiver, subject and content of a new message.
func (a *App) Send(ctx context.Context) error {
	receiver, err := getSimpleText(a.reader, "To", a.out)
	if err != nil {
		return err
	}

	subject, err := getSimpleText(a.reader, "Subject", a.out)
	if err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Message", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	defer a.syncSession()

	id, err := a.client.SendMessage(ctx, receiver, subject, content)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Message #%d sent to %s\n", id, receiver)
	return nil
}

// Read shows a message; the id comes from args or is prompted for.
func (a *App) Read(ctx context.Context, args []string) error {
	id, err := a.messageID(args, "Enter message id to read")
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	defer a.syncSession()

	msg, found, err := a.client.ReadMessage(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(a.out, "Message #%d not found\n", id)
		return nil
	}

	fmt.Fprintf(a.out, "#%d %s\n", msg.ID, msg.Subject)
	fmt.Fprintf(a.out, "From: %s\n", displayName(msg.Sender))
	fmt.Fprintf(a.out, "To:   %s\n", displayName(msg.Receiver))
	fmt.Fprintf(a.out, "Date: %s\n\n", formatTime(msg.SentAt))
	fmt.Fprintln(a.out, msg.Content)
	return nil
}

// Delete removes a message from the caller's side of the mailbox.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.messageID(args, "Enter message id to delete")
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	defer a.syncSession()

	deleted, err := a.client.DeleteMessage(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintf(a.out, "Message #%d not found\n", id)
		return nil
	}

	fmt.Fprintf(a.out, "Message #%d deleted\n", id)
	return nil
}

func (a *App) messageID(args []string, prompt string) (int64, error) {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	} else {
		var err error
		if raw, err = getSimpleText(a.reader, prompt, a.out); err != nil {
			return 0, err
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func sortedSummaries(m map[int64]api.MessageSummary) []api.MessageSummary {
	out := make([]api.MessageSummary, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[id])
	}
	return out
}

// printSummaries writes one row per message. direction is "from" or "to"
// and picks which side of the message is shown.
func printSummaries(w io.Writer, list []api.MessageSummary, direction string) {
	if len(list) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, m := range list {
		peer := m.Sender
		if direction == "to" {
			peer = m.Receiver
		}
		flag := ""
		if !m.Read {
			flag = "*"
		}
		fmt.Fprintf(tw, "  #%d%s\t%s %s\t%s\t%s\n", m.ID, flag, direction, displayName(peer), formatTime(m.SentAt), m.Subject)
	}
	_ = tw.Flush()
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func displayName(name string) string {
	if name == "" {
		return "(unknown)"
	}
	return name
}
