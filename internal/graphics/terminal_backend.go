package graphics

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"gogb/internal/ppu"
)

// Terminals report key presses but never releases, so a pressed key is held
// for this many polls after its last repeat
const terminalHoldFrames = 8

// terminalInput delivers raw bytes typed at the terminal
type terminalInput interface {
	Keys() <-chan []byte
	Close() error
}

// TerminalBackend implements the Backend interface for terminal-based rendering
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow renders frames with ANSI true-colour half blocks, two LCD
// rows per text row
type TerminalWindow struct {
	title   string
	width   int
	height  int
	running bool

	out    *bufio.Writer
	input  terminalInput
	keyMap map[Key]Button
	held   map[Key]int
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow takes over stdout and puts stdin in cbreak mode
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	input, err := openTerminalInput(os.Stdin)
	if err != nil {
		log.Printf("[TERMINAL] Keyboard input unavailable: %v", err)
		input = nil
	}

	window := newTerminalWindow(os.Stdout, input, b.config.keyMap())
	window.width, window.height = width, height
	window.SetTitle(title)

	// Clear screen and hide the cursor
	fmt.Fprint(window.out, "\033[2J\033[?25l")
	window.out.Flush()

	return window, nil
}

func newTerminalWindow(out io.Writer, input terminalInput, keyMap map[Key]Button) *TerminalWindow {
	return &TerminalWindow{
		running: true,
		out:     bufio.NewWriterSize(out, 64*1024),
		input:   input,
		keyMap:  keyMap,
		held:    make(map[Key]int),
	}
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// TerminalWindow implementation

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

// GetSize returns window dimensions
func (w *TerminalWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers does nothing for terminal
func (w *TerminalWindow) SwapBuffers() {}

// PollEvents decodes typed keys. Each key press is reported once and
// released after terminalHoldFrames polls without a repeat.
func (w *TerminalWindow) PollEvents() []InputEvent {
	var events []InputEvent

	for key, remaining := range w.held {
		if remaining <= 1 {
			delete(w.held, key)
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: false})
			continue
		}
		w.held[key] = remaining - 1
	}

	if w.input != nil {
	drain:
		for {
			select {
			case data, ok := <-w.input.Keys():
				if !ok {
					w.input = nil
					break drain
				}
				events = append(events, w.pressKeys(decodeTerminalKeys(data))...)
			default:
				break drain
			}
		}
	}

	return MapKeyEvents(events, w.keyMap)
}

func (w *TerminalWindow) pressKeys(keys []Key) []InputEvent {
	var events []InputEvent
	for _, key := range keys {
		if key == KeyEscape || key == KeyQ {
			events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
			continue
		}
		if _, held := w.held[key]; !held {
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true})
		}
		w.held[key] = terminalHoldFrames
	}
	return events
}

// RenderFrame draws the frame at the top left of the terminal
func (w *TerminalWindow) RenderFrame(frameBuffer [ppu.Width * ppu.Height]uint32) error {
	fmt.Fprint(w.out, "\033[H")
	writeHalfBlocks(w.out, &frameBuffer)
	return w.out.Flush()
}

// writeHalfBlocks emits one upper half block per pixel pair, with the top
// pixel as foreground and the bottom pixel as background. Colour escapes are
// only written when the colour changes.
func writeHalfBlocks(out io.Writer, frameBuffer *[ppu.Width * ppu.Height]uint32) {
	for y := 0; y < ppu.Height; y += 2 {
		var fg, bg uint32
		first := true
		for x := 0; x < ppu.Width; x++ {
			top := frameBuffer[y*ppu.Width+x]
			bottom := frameBuffer[(y+1)*ppu.Width+x]

			if first || top != fg {
				r, g, b, _ := ppu.RGBA(top)
				fmt.Fprintf(out, "\033[38;2;%d;%d;%dm", r, g, b)
				fg = top
			}
			if first || bottom != bg {
				r, g, b, _ := ppu.RGBA(bottom)
				fmt.Fprintf(out, "\033[48;2;%d;%d;%dm", r, g, b)
				bg = bottom
			}
			first = false
			io.WriteString(out, "▀")
		}
		io.WriteString(out, "\033[0m\r\n")
	}
}

// Cleanup restores the terminal
func (w *TerminalWindow) Cleanup() error {
	w.running = false
	fmt.Fprint(w.out, "\033[0m\033[?25h\r\n")
	flushErr := w.out.Flush()

	if w.input != nil {
		if err := w.input.Close(); err != nil {
			return fmt.Errorf("failed to restore terminal: %w", err)
		}
		w.input = nil
	}
	return flushErr
}

// decodeTerminalKeys translates bytes read in cbreak mode into keys.
// Arrow keys arrive as CSI sequences and F1-F4 as SS3 sequences.
func decodeTerminalKeys(data []byte) []Key {
	var keys []Key
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == 0x1b {
			if i+2 < len(data) && data[i+1] == '[' {
				switch data[i+2] {
				case 'A':
					keys = append(keys, KeyUp)
				case 'B':
					keys = append(keys, KeyDown)
				case 'C':
					keys = append(keys, KeyRight)
				case 'D':
					keys = append(keys, KeyLeft)
				}
				i += 2
				continue
			}
			if i+2 < len(data) && data[i+1] == 'O' && data[i+2] >= 'P' && data[i+2] <= 'S' {
				keys = append(keys, KeyF1+Key(data[i+2]-'P'))
				i += 2
				continue
			}
			keys = append(keys, KeyEscape)
			continue
		}

		switch c {
		case '\r', '\n':
			keys = append(keys, KeyEnter)
		case ' ':
			keys = append(keys, KeySpace)
		case '\t':
			keys = append(keys, KeyTab)
		case 0x7f, 0x08:
			keys = append(keys, KeyBackspace)
		default:
			if c >= 'A' && c <= 'Z' {
				c += 'a' - 'A'
			}
			if key, ok := keyNames[string(c)]; ok {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// readKeys forwards everything read from r until it fails
func readKeys(r io.Reader, keys chan<- []byte) {
	defer close(keys)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			keys <- data
		}
		if err != nil {
			return
		}
	}
}
