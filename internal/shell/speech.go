package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrSpeechUnavailable is returned when voice input is requested
	// without a recognizer.
	ErrSpeechUnavailable = errors.New("speech recognition is not available")

	// ErrNoSpeech is returned when the recognizer heard nothing.
	ErrNoSpeech = errors.New("no speech was recognized")
)

// Recognizer turns one utterance into text.
type Recognizer interface {
	Recognize(ctx context.Context, locale string) (string, error)
}

// SpeechCapability is either Available with a Recognizer or Unavailable.
// Callers check Available before offering voice input.
type SpeechCapability struct {
	recognizer Recognizer
}

// Unavailable is the capability of a host with no recognizer.
var Unavailable = SpeechCapability{}

// Available wraps r as a usable capability.
func Available(r Recognizer) SpeechCapability {
	return SpeechCapability{recognizer: r}
}

// Available reports whether voice input can be offered.
func (c SpeechCapability) Available() bool { return c.recognizer != nil }

// Recognize listens once in locale.
func (c SpeechCapability) Recognize(ctx context.Context, locale string) (string, error) {
	if c.recognizer == nil {
		return "", ErrSpeechUnavailable
	}
	return c.recognizer.Recognize(ctx, locale)
}

// localePlaceholder in a recognizer argument is replaced by the locale.
// Without one the locale is appended as the last argument.
const localePlaceholder = "{locale}"

// CommandRecognizer runs an external program that records one utterance
// and prints the transcript on stdout.
type CommandRecognizer struct {
	Command []string
}

// Recognize runs the command once for locale.
func (r *CommandRecognizer) Recognize(ctx context.Context, locale string) (string, error) {
	if len(r.Command) == 0 {
		return "", ErrSpeechUnavailable
	}

	args := make([]string, 0, len(r.Command))
	substituted := false
	for _, a := range r.Command[1:] {
		if strings.Contains(a, localePlaceholder) {
			a = strings.ReplaceAll(a, localePlaceholder, locale)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, locale)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Command[0], args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("recognizer failed: %s: %w", msg, err)
		}
		return "", fmt.Errorf("recognizer failed: %w", err)
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// DetectSpeech returns Available when command names an executable on PATH.
func DetectSpeech(command []string) SpeechCapability {
	if len(command) == 0 {
		return Unavailable
	}
	if _, err := exec.LookPath(command[0]); err != nil {
		return Unavailable
	}
	return Available(&CommandRecognizer{Command: command})
}
