// Package hardware holds the capability interfaces for the kiosk's physical
// collaborators and their concrete implementations. The core never touches a
// device handle directly; it is handed these interfaces by the foreground
// loop.
package hardware

import "context"

// DoorOpener opens a sequence of doors. Implementations stagger activation
// per door and hold each door open for a fixed duration; the timing values
// are policy of whoever constructs the opener.
type DoorOpener interface {
	OpenDoors(doors []string) error
}

// Display shows short status messages to the person at the kiosk
type Display interface {
	Show(lines ...string)
	Clear()
}

// CodeInput produces finished code strings. ReadCode blocks until a code has
// been submitted or the context is cancelled.
type CodeInput interface {
	ReadCode(ctx context.Context) (string, error)
}
