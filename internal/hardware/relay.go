package hardware

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RelayBoard drives the relay controller over a serial line. One batched
// command opens all requested doors: each door gets an activation delay of
// stagger times its position and stays open for the hold duration. The board
// expects commands of the form OPEN:<door>:<wait_ms>:<hold_ms>[,...].
type RelayBoard struct {
	port    io.ReadWriter
	stagger time.Duration
	hold    time.Duration
}

// NewRelayBoard creates a relay board on an open serial port
func NewRelayBoard(port io.ReadWriter, stagger, hold time.Duration) *RelayBoard {
	return &RelayBoard{
		port:    port,
		stagger: stagger,
		hold:    hold,
	}
}

// OpenSerialPort opens the relay controller's serial device
func OpenSerialPort(device string) (io.ReadWriteCloser, error) {
	port, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial device %s", device)
	}
	return port, nil
}

// OpenDoors sends one batched open command for the given doors
func (r *RelayBoard) OpenDoors(doors []string) error {
	if len(doors) == 0 {
		return nil
	}

	commands := make([]string, 0, len(doors))
	for i, door := range doors {
		wait := time.Duration(i) * r.stagger
		commands = append(commands, fmt.Sprintf("%s:%d:%d", door, wait.Milliseconds(), r.hold.Milliseconds()))
	}
	command := "OPEN:" + strings.Join(commands, ",") + "\n"

	if _, err := io.WriteString(r.port, command); err != nil {
		return errors.Wrap(err, "failed to send relay command")
	}
	log.Debug().Str("command", strings.TrimSpace(command)).Msg("Sent relay command")

	// The controller acknowledges with a single line
	if _, err := bufio.NewReader(r.port).ReadString('\n'); err != nil && err != io.EOF {
		return errors.Wrap(err, "failed to read relay response")
	}
	return nil
}

// NoopDoorOpener logs door openings without touching hardware, for
// development machines without a relay board.
type NoopDoorOpener struct{}

// OpenDoors implements DoorOpener
func (NoopDoorOpener) OpenDoors(doors []string) error {
	log.Info().Strs("doors", doors).Msg("Dry run: would open doors")
	return nil
}
