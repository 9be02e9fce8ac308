package clipboard

import (
	"errors"
	"os/exec"
	"reflect"
	"testing"
)

func stubLookPath(t *testing.T, present ...string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(name string) (string, error) {
		for _, p := range present {
			if p == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestPasteCommand(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		present []string
		want    []string
		wantErr bool
	}{
		{"macOS", "darwin", []string{"pbpaste"}, []string{"pbpaste"}, false},
		{"wayland preferred", "linux", []string{"xclip", "wl-paste"}, []string{"wl-paste", "--no-newline"}, false},
		{"xsel fallback", "linux", []string{"xsel"}, []string{"xsel", "--clipboard", "--output"}, false},
		{"nothing installed", "linux", nil, nil, true},
		{"unsupported platform", "plan9", []string{"pbpaste"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookPath(t, tt.present...)
			got, err := pasteCommand(tt.goos)
			if tt.wantErr {
				if !errors.Is(err, ErrClipboardUnavailable) {
					t.Errorf("pasteCommand() error = %v, want ErrClipboardUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("pasteCommand() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("pasteCommand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaste_Unavailable(t *testing.T) {
	stubLookPath(t)
	if IsAvailable() {
		t.Error("IsAvailable() = true with no commands")
	}
	if _, err := Paste(); !errors.Is(err, ErrClipboardUnavailable) {
		t.Errorf("Paste() error = %v, want ErrClipboardUnavailable", err)
	}
}
