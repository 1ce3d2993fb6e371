package hardware

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePort captures written commands and replies with a canned ack line
type fakePort struct {
	written bytes.Buffer
	reply   io.Reader
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }
func (p *fakePort) Read(b []byte) (int, error)  { return p.reply.Read(b) }

func TestOpenDoorsCommandEncoding(t *testing.T) {
	port := &fakePort{reply: bytes.NewBufferString("OK\n")}
	board := NewRelayBoard(port, 500*time.Millisecond, 5*time.Second)

	require.NoError(t, board.OpenDoors([]string{"3", "5", "12"}))
	require.Equal(t, "OPEN:3:0:5000,5:500:5000,12:1000:5000\n", port.written.String())
}

func TestOpenDoorsSingleDoorHasNoStagger(t *testing.T) {
	port := &fakePort{reply: bytes.NewBufferString("OK\n")}
	board := NewRelayBoard(port, 500*time.Millisecond, 5*time.Second)

	require.NoError(t, board.OpenDoors([]string{"7"}))
	require.Equal(t, "OPEN:7:0:5000\n", port.written.String())
}

func TestOpenDoorsEmptySetIsNoop(t *testing.T) {
	port := &fakePort{reply: bytes.NewBufferString("")}
	board := NewRelayBoard(port, 500*time.Millisecond, 5*time.Second)

	require.NoError(t, board.OpenDoors(nil))
	require.Zero(t, port.written.Len())
}

func TestOpenDoorsToleratesEOFBeforeAck(t *testing.T) {
	port := &fakePort{reply: bytes.NewBufferString("")}
	board := NewRelayBoard(port, 500*time.Millisecond, 5*time.Second)

	require.NoError(t, board.OpenDoors([]string{"3"}))
}
