//go:build !linux

package graphics

import "os"

// lineInput reads stdin in the terminal's default line mode
type lineInput struct {
	keys chan []byte
}

func openTerminalInput(file *os.File) (terminalInput, error) {
	in := &lineInput{keys: make(chan []byte, 16)}
	go readKeys(file, in.keys)
	return in, nil
}

func (in *lineInput) Keys() <-chan []byte {
	return in.keys
}

func (in *lineInput) Close() error {
	return nil
}
