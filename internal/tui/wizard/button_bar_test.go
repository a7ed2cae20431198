package wizard

import (
	"strings"
	"testing"
)

func TestCreateBackNextButtons(t *testing.T) {
	tests := []struct {
		name     string
		back     bool
		next     bool
		wantBack ButtonState
		wantNext ButtonState
	}{
		{"both enabled", true, true, ButtonNormal, ButtonFocused},
		{"first step", false, true, ButtonDisabled, ButtonFocused},
		{"gate closed", true, false, ButtonNormal, ButtonDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buttons := CreateBackNextButtons(tt.back, tt.next, "Next →")
			if len(buttons) != 2 {
				t.Fatalf("expected 2 buttons, got %d", len(buttons))
			}
			if buttons[0].State != tt.wantBack {
				t.Errorf("back state = %v, want %v", buttons[0].State, tt.wantBack)
			}
			if buttons[1].State != tt.wantNext {
				t.Errorf("next state = %v, want %v", buttons[1].State, tt.wantNext)
			}
			if buttons[1].Label != "Next →" {
				t.Errorf("next label = %q", buttons[1].Label)
			}
		})
	}
}

func TestButtonBarRender(t *testing.T) {
	bar := NewButtonBar(CreateBackNextButtons(false, true, "Finish"))
	bar.SetWidth(40)
	out := bar.Render()
	if !strings.Contains(out, "← Back") || !strings.Contains(out, "Finish") {
		t.Errorf("button bar missing labels: %q", out)
	}

	if NewButtonBar(nil).Render() != "" {
		t.Error("empty button bar should render nothing")
	}
}

func TestRenderHintBar(t *testing.T) {
	out := renderHintBar("enter", "select", "esc", "back")
	if !strings.Contains(out, "enter select") || !strings.Contains(out, "esc back") || !strings.Contains(out, "•") {
		t.Errorf("unexpected hint bar: %q", out)
	}
	if renderHintBar("odd") != "" {
		t.Error("odd pair count should render nothing")
	}
}
