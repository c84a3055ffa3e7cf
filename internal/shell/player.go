package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/lingobridge/translation-gateway/internal/domain"
)

// Player plays an audio file.
type Player interface {
	Play(ctx context.Context, path string) error
}

// CommandPlayer plays files with an external program; the path is appended
// as the last argument.
type CommandPlayer struct {
	Command []string
}

// Play runs the player and waits for it to finish.
func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	if len(p.Command) == 0 {
		return errors.New("no audio player configured")
	}
	args := append(append([]string{}, p.Command[1:]...), path)
	out, err := exec.CommandContext(ctx, p.Command[0], args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("player failed: %s: %w", msg, err)
		}
		return fmt.Errorf("player failed: %w", err)
	}
	return nil
}

// PlayAudio writes audio to a temporary file in dir (the system default when
// empty), plays it and removes the file on every path.
func PlayAudio(ctx context.Context, p Player, audio *domain.Audio, dir string) error {
	f, err := os.CreateTemp(dir, "lingobridge-*"+audioExt(audio.ContentType))
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio.Body); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return p.Play(ctx, path)
}

func audioExt(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	}
	return ".audio"
}
