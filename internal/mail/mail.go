// Package mail retrieves messages from an IMAP mail source.
//
// The boundary is fail-soft: any connectivity or protocol failure returns an
// empty batch alongside the error, and the caller decides how to proceed.
package mail

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/jonathan/email-tracker/internal/types"
)

const (
	inboxMailbox = "INBOX"
	dialTimeout  = 30 * time.Second
)

// Client holds the connection settings for one IMAP account.
// A fresh connection is established per Fetch call; nothing is kept open
// between runs.
type Client struct {
	server   string // host:port, e.g. imap.example.com:993
	username string
	password string
}

// NewClient creates a mail client for the given server and credentials.
func NewClient(server, username, password string) *Client {
	return &Client{server: server, username: username, password: password}
}

// Fetch retrieves up to limit of the most recent inbox messages and converts
// them to email records with Processed=false. Message UIDs become record ids,
// which keeps ids stable across runs for storage-level deduplication.
//
// The IMAP session itself is not cancellable mid-flight; ctx bounds only
// connection establishment.
func (c *Client) Fetch(ctx context.Context, limit int) ([]types.Email, error) {
	if c.server == "" {
		return nil, fmt.Errorf("mail server is not configured")
	}

	dialer := &contextDialer{ctx: ctx, dialer: net.Dialer{Timeout: dialTimeout}}
	conn, err := client.DialWithDialerTLS(dialer, c.server, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mail server %s: %w", c.server, err)
	}
	defer func() { _ = conn.Logout() }()

	if err := conn.Login(c.username, c.password); err != nil {
		return nil, fmt.Errorf("failed to log in to mail server: %w", err)
	}

	mbox, err := conn.Select(inboxMailbox, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox: %w", err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	from := uint32(1)
	to := mbox.Messages
	if limit > 0 && mbox.Messages > uint32(limit) {
		from = mbox.Messages - uint32(limit) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, to)

	// Peek keeps the server from flagging messages as seen on our behalf.
	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.TextSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, to-from+1)
	done := make(chan error, 1)
	go func() {
		done <- conn.Fetch(seqset, items, messages)
	}()

	var emails []types.Email
	for msg := range messages {
		emails = append(emails, convertMessage(msg, section))
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return emails, nil
}

// contextDialer adapts net.Dialer to the go-imap Dialer interface while
// honoring the caller's context during connection establishment.
type contextDialer struct {
	ctx    context.Context
	dialer net.Dialer
}

func (d *contextDialer) Dial(network, addr string) (net.Conn, error) {
	return d.dialer.DialContext(d.ctx, network, addr)
}

// convertMessage maps an IMAP message to an email record. Missing envelope
// pieces degrade to empty fields rather than dropping the message.
func convertMessage(msg *imap.Message, section *imap.BodySectionName) types.Email {
	e := types.Email{
		ID:        strconv.FormatUint(uint64(msg.Uid), 10),
		Processed: false,
	}

	if env := msg.Envelope; env != nil {
		e.Date = env.Date
		e.Subject = env.Subject
		if len(env.From) > 0 {
			from := env.From[0]
			e.Sender = from.PersonalName
			e.Address = from.Address()
			if e.Sender == "" {
				e.Sender = e.Address
			}
		}
	}

	if r := msg.GetBody(section); r != nil {
		if body, err := io.ReadAll(r); err == nil {
			e.Body = string(body)
		}
	}

	return e
}
