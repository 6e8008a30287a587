package rcon

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gorcon/rcon"

	"srcdsbot/internal/status"
)

const statusCommand = "status"

// ErrAuthFailed is returned when the server rejects the RCON password.
var ErrAuthFailed = rcon.ErrAuthFailed

type Client struct {
	addr    string
	pass    string
	timeout time.Duration
	parser  *status.Parser
}

func New(host string, port int, pass string, timeout time.Duration, parser *status.Parser) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if parser == nil {
		parser = status.New(status.DefaultOptions())
	}
	return &Client{
		addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		pass:    pass,
		timeout: timeout,
		parser:  parser,
	}
}

// Status runs "status" and parses the reply.
func (c *Client) Status(ctx context.Context) (status.ServerStatus, error) {
	response, err := c.Exec(ctx, statusCommand)
	if err != nil {
		return status.ServerStatus{}, err
	}
	st, err := c.parser.Parse(response)
	if err != nil {
		return status.ServerStatus{}, fmt.Errorf("parse status reply: %w", err)
	}
	return st, nil
}

// Exec opens a connection, runs one command and returns the normalized reply.
func (c *Client) Exec(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); until < timeout {
			timeout = until
		}
	}
	if timeout <= 0 {
		return "", context.DeadlineExceeded
	}

	type result struct {
		body string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := c.exec(command, timeout)
		done <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		return NormalizeResponse(res.body), nil
	}
}

func (c *Client) exec(command string, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", c.addr, timeout)
	if err != nil {
		return "", fmt.Errorf("dial rcon %s: %w", c.addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}

	if err := authenticate(conn, c.pass); err != nil {
		return "", fmt.Errorf("rcon auth %s: %w", c.addr, err)
	}

	response, err := execute(conn, command)
	if err != nil {
		return "", fmt.Errorf("execute %q: %w", command, err)
	}
	return response, nil
}
