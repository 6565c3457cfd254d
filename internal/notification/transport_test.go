package notification

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
)

// fakeSMTPServer accepts one session and records the DATA payload.
func fakeSMTPServer(t *testing.T) (config.SMTPConfig, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	data := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

		reply("220 fake ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 fake")
			case strings.HasPrefix(cmd, "MAIL FROM"), strings.HasPrefix(cmd, "RCPT TO"):
				reply("250 OK")
			case cmd == "DATA":
				reply("354 go ahead")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				data <- body.String()
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				return
			default:
				reply("500 unknown")
			}
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return config.SMTPConfig{Host: host, Port: port}, data
}

func TestSMTPMailer_Send(t *testing.T) {
	cfg, data := fakeSMTPServer(t)
	mailer := NewSMTPMailer(cfg, "noreply@jansevak.com")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := mailer.Send(ctx, Message{To: "asha@example.com", Subject: "New Complaint Received: Pothole", Body: "line one\nline two"})
	require.NoError(t, err)

	select {
	case payload := <-data:
		assert.Contains(t, payload, "From: noreply@jansevak.com\r\n")
		assert.Contains(t, payload, "To: asha@example.com\r\n")
		assert.Contains(t, payload, "Subject: New Complaint Received: Pothole\r\n")
		assert.Contains(t, payload, "line one\r\nline two")
	case <-time.After(2 * time.Second):
		t.Fatal("server received no data")
	}
}

func TestSMTPMailer_ConnectionFailureIsTransportError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	mailer := NewSMTPMailer(config.SMTPConfig{Host: "127.0.0.1", Port: addr.Port}, "noreply@jansevak.com")
	err = mailer.Send(context.Background(), Message{To: "asha@example.com"})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "smtp", transportErr.Transport)
	assert.Equal(t, "asha@example.com", transportErr.To)
}

type fakePublisher struct {
	key string
	doc any
	err error
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.key = key
	p.doc = v
	return p.err
}

func TestAMQPMailer(t *testing.T) {
	pub := &fakePublisher{}
	mailer := NewAMQPMailer(pub, "complaint.created")
	msg := Message{ComplaintID: "c-1", To: "asha@example.com", Subject: "s", Body: "b"}

	require.NoError(t, mailer.Send(context.Background(), msg))
	assert.Equal(t, "complaint.created", pub.key)
	assert.Equal(t, msg, pub.doc)

	pub.err = errors.New("channel closed")
	err := mailer.Send(context.Background(), msg)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "amqp", transportErr.Transport)
	assert.ErrorIs(t, err, pub.err)
}

func TestLogMailer(t *testing.T) {
	mailer := NewLogMailer(zap.NewNop(), "noreply@jansevak.com")
	assert.NoError(t, mailer.Send(context.Background(), Message{To: "a@b.c"}))
}
