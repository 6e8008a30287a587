package rcon

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gorcon/rcon"
)

const (
	authPacketID    int32 = 1
	commandPacketID int32 = 2
	mirrorPacketID  int32 = 3
)

var errCommandRejected = errors.New("rcon command rejected")

func authenticate(rw io.ReadWriter, password string) error {
	if err := writePacket(rw, rcon.SERVERDATA_AUTH, authPacketID, password); err != nil {
		return fmt.Errorf("send auth packet: %w", err)
	}

	// srcds sends an empty RESPONSE_VALUE before the AUTH_RESPONSE.
	for i := 0; i < 3; i++ {
		pkt, err := readPacket(rw)
		if err != nil {
			return fmt.Errorf("read auth response: %w", err)
		}
		if pkt.Type != rcon.SERVERDATA_AUTH_RESPONSE {
			continue
		}
		if pkt.ID == -1 {
			return rcon.ErrAuthFailed
		}
		return nil
	}
	return rcon.ErrInvalidAuthResponse
}

// execute runs command and joins every RESPONSE_VALUE packet of its reply.
// srcds splits long replies, so an empty RESPONSE_VALUE is sent right after
// the command: the server answers packets in order, and the mirrored id marks
// the end of the command's reply.
func execute(rw io.ReadWriter, command string) (string, error) {
	if command == "" {
		return "", rcon.ErrCommandEmpty
	}
	if len(command) > rcon.MaxCommandLen {
		return "", rcon.ErrCommandTooLong
	}

	if err := writePacket(rw, rcon.SERVERDATA_EXECCOMMAND, commandPacketID, command); err != nil {
		return "", fmt.Errorf("send command packet: %w", err)
	}
	if err := writePacket(rw, rcon.SERVERDATA_RESPONSE_VALUE, mirrorPacketID, ""); err != nil {
		return "", fmt.Errorf("send mirror packet: %w", err)
	}

	var b strings.Builder
	for {
		pkt, err := readPacket(rw)
		if err != nil {
			return "", fmt.Errorf("read command response: %w", err)
		}
		switch {
		case pkt.ID == -1:
			return "", errCommandRejected
		case pkt.ID == mirrorPacketID:
			return b.String(), nil
		case pkt.ID == commandPacketID && pkt.Type == rcon.SERVERDATA_RESPONSE_VALUE:
			b.WriteString(pkt.Body())
		}
	}
}

func writePacket(w io.Writer, typ, id int32, body string) error {
	_, err := rcon.NewPacket(typ, id, body).WriteTo(w)
	return err
}

func readPacket(r io.Reader) (*rcon.Packet, error) {
	pkt := &rcon.Packet{}
	if _, err := pkt.ReadFrom(r); err != nil {
		return nil, err
	}
	return pkt, nil
}
