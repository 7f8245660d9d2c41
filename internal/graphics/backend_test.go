package graphics

import (
	"testing"

	"gogb/internal/input"
	"gogb/internal/ppu"
)

func TestCreateBackend(t *testing.T) {
	tests := []struct {
		backendType BackendType
		wantName    string
		wantErr     bool
	}{
		{BackendHeadless, "Headless", false},
		{BackendTerminal, "Terminal", false},
		{"opengl", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.backendType), func(t *testing.T) {
			backend, err := CreateBackend(tt.backendType)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error for an unknown backend")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			if backend.GetName() != tt.wantName {
				t.Errorf("Expected %q, got %q", tt.wantName, backend.GetName())
			}
		})
	}
}

func TestButtonJoypad(t *testing.T) {
	tests := []struct {
		button Button
		want   input.Button
	}{
		{ButtonA, input.A},
		{ButtonB, input.B},
		{ButtonSelect, input.Select},
		{ButtonStart, input.Start},
		{ButtonUp, input.Up},
		{ButtonDown, input.Down},
		{ButtonLeft, input.Left},
		{ButtonRight, input.Right},
	}

	for _, tt := range tests {
		got, ok := tt.button.Joypad()
		if !ok || got != tt.want {
			t.Errorf("Button %d: expected 0x%02X, got 0x%02X (ok=%v)", tt.button, tt.want, got, ok)
		}
	}

	if _, ok := ButtonUnknown.Joypad(); ok {
		t.Error("ButtonUnknown should not map to a joypad line")
	}
}

func TestParseKeyMap(t *testing.T) {
	keyMap, err := ParseKeyMap(map[string]string{
		"Enter": "start",
		"x":     "A",
		"f1":    "select",
	})
	if err != nil {
		t.Fatalf("ParseKeyMap: %v", err)
	}

	want := map[Key]Button{KeyEnter: ButtonStart, KeyX: ButtonA, KeyF1: ButtonSelect}
	if len(keyMap) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(keyMap))
	}
	for key, button := range want {
		if keyMap[key] != button {
			t.Errorf("Key %s: expected button %d, got %d", key, button, keyMap[key])
		}
	}

	if _, err := ParseKeyMap(map[string]string{"hyper": "a"}); err == nil {
		t.Error("Expected an error for an unknown key")
	}
	if _, err := ParseKeyMap(map[string]string{"x": "turbo"}); err == nil {
		t.Error("Expected an error for an unknown button")
	}
}

func TestKeyString(t *testing.T) {
	if KeyF10.String() != "f10" || KeyEnter.String() != "enter" {
		t.Errorf("Unexpected key names %q %q", KeyF10, KeyEnter)
	}
	if KeyUnknown.String() != "unknown" {
		t.Errorf("Expected 'unknown', got %q", KeyUnknown)
	}
}

func TestMapKeyEvents(t *testing.T) {
	events := []InputEvent{
		{Type: InputEventTypeKey, Key: KeyEnter, Pressed: true},
		{Type: InputEventTypeKey, Key: KeyF12, Pressed: true},
		{Type: InputEventTypeQuit, Pressed: true},
		{Type: InputEventTypeKey, Key: KeyUp, Pressed: false},
	}

	mapped := MapKeyEvents(events, DefaultKeyMap())
	if len(mapped) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(mapped))
	}

	if mapped[0].Type != InputEventTypeButton || mapped[0].Button != ButtonStart || !mapped[0].Pressed {
		t.Errorf("Enter should press Start, got %+v", mapped[0])
	}
	if mapped[1].Type != InputEventTypeKey || mapped[1].Key != KeyF12 {
		t.Errorf("Unmapped keys should pass through, got %+v", mapped[1])
	}
	if mapped[2].Type != InputEventTypeQuit {
		t.Errorf("Quit should pass through, got %+v", mapped[2])
	}
	if mapped[3].Button != ButtonUp || mapped[3].Pressed {
		t.Errorf("Up release should release the Up button, got %+v", mapped[3])
	}

	if MapKeyEvents(nil, DefaultKeyMap()) != nil {
		t.Error("No events should map to nil")
	}
}

func TestFillImage(t *testing.T) {
	var frameBuffer [ppu.Width * ppu.Height]uint32
	for i := range frameBuffer {
		frameBuffer[i] = ppu.ShadeWhite
	}
	frameBuffer[ppu.Width+1] = ppu.ShadeDarkGray

	img := NewFrameImage()
	if inked := FillImage(img, &frameBuffer); inked != 1 {
		t.Errorf("Expected 1 non-white pixel, got %d", inked)
	}

	r, g, b, a := img.At(1, 1).RGBA()
	if r>>8 != 0x55 || g>>8 != 0x55 || b>>8 != 0x55 || a>>8 != 0xFF {
		t.Errorf("Unexpected pixel at (1,1): %02X %02X %02X %02X", r>>8, g>>8, b>>8, a>>8)
	}
}
