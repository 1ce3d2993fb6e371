package hardware

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// ConsoleDisplay writes kiosk messages to standard output, standing in for
// the LCD on development machines.
type ConsoleDisplay struct {
	Out io.Writer
}

// Show implements Display
func (d *ConsoleDisplay) Show(lines ...string) {
	fmt.Fprintf(d.Out, "[LCD] %s\n", strings.Join(lines, " / "))
}

// Clear implements Display
func (d *ConsoleDisplay) Clear() {}

// LogDisplay routes kiosk messages into the service log, for headless runs
type LogDisplay struct{}

// Show implements Display
func (LogDisplay) Show(lines ...string) {
	log.Info().Str("display", strings.Join(lines, " / ")).Msg("Kiosk message")
}

// Clear implements Display
func (LogDisplay) Clear() {}

// ConsoleInput reads submitted codes line by line, standing in for the
// keypad. A line is a finished code; the keypad's own star/hash editing
// protocol ends at this boundary.
type ConsoleInput struct {
	scanner *bufio.Scanner
}

// NewConsoleInput creates a console code reader
func NewConsoleInput(in io.Reader) *ConsoleInput {
	return &ConsoleInput{scanner: bufio.NewScanner(in)}
}

// ReadCode implements CodeInput
func (c *ConsoleInput) ReadCode(ctx context.Context) (string, error) {
	type result struct {
		code string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		if !c.scanner.Scan() {
			if err := c.scanner.Err(); err != nil {
				ch <- result{err: err}
				return
			}
			ch <- result{err: io.EOF}
			return
		}
		ch <- result{code: strings.TrimSpace(c.scanner.Text())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.code, res.err
	}
}
