//go:build linux

package graphics

import (
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// cbreakInput reads stdin unbuffered and without echo
type cbreakInput struct {
	file  *os.File
	saved unix.Termios
	keys  chan []byte
}

func openTerminalInput(file *os.File) (terminalInput, error) {
	in := &cbreakInput{file: file, keys: make(chan []byte, 16)}

	if err := termios.Tcgetattr(file.Fd(), &in.saved); err != nil {
		return nil, fmt.Errorf("failed to read terminal attributes: %w", err)
	}

	cbreak := in.saved
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(file.Fd(), termios.TCIFLUSH, &cbreak); err != nil {
		return nil, fmt.Errorf("failed to enter cbreak mode: %w", err)
	}

	go readKeys(file, in.keys)
	return in, nil
}

func (in *cbreakInput) Keys() <-chan []byte {
	return in.keys
}

// Close restores the attributes saved when the input was opened
func (in *cbreakInput) Close() error {
	return termios.Tcsetattr(in.file.Fd(), termios.TCIFLUSH, &in.saved)
}
