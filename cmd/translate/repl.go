package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/lingobridge/translation-gateway/internal/languages"
	"github.com/lingobridge/translation-gateway/internal/shell"
)

const replHelp = `Type text and pause to translate it automatically, or use:
  :go            translate now
  :swap          swap languages and texts
  :clear         clear input, output and error
  :from CODE     set the source language
  :to CODE       set the target language
  :listen        replace the input with speech (when available)
  :speak         play the translation
  :history       show recent target languages
  :help          show this help
  :quit          exit`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive translator",
		Long: `Interactive translator. Each line you type replaces the input; it is
translated after a short pause. Lines starting with ':' are commands.

` + replHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &renderer{w: cmd.OutOrStdout()}
			sh := shell.New(shell.Options{
				Translator: a.client,
				History:    a.history,
				Speech:     shell.DetectSpeech(a.settings.RecognizerCommand),
				Player:     &shell.CommandPlayer{Command: a.settings.PlayerCommand},
				Logger:     a.logger,
				SourceLang: a.settings.SourceLang,
				TargetLang: a.settings.TargetLang,
				OnChange:   r.render,
			})
			defer sh.Close()

			return runREPL(cmd.Context(), sh, cmd.InOrStdin(), r)
		},
	}
}

// runREPL reads lines from in until EOF or :quit.
func runREPL(ctx context.Context, sh *shell.Shell, in io.Reader, r *renderer) error {
	st := sh.State()
	r.printf("%s -> %s. Type :help for commands.\n", langLabel(st.SourceLang), langLabel(st.TargetLang))

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		name, arg, isCmd := parseLine(sc.Text())
		if !isCmd {
			sh.Type(name)
			continue
		}

		switch name {
		case "go":
			sh.TranslateNow()
			sh.Wait()
		case "swap":
			sh.Swap()
			st := sh.State()
			r.printf("%s -> %s\n", langLabel(st.SourceLang), langLabel(st.TargetLang))
		case "clear":
			sh.Clear()
		case "from", "to":
			if !languages.Supported(arg) {
				r.printf("unsupported language %q\n", arg)
				continue
			}
			if name == "from" {
				sh.SetSource(arg)
			} else {
				sh.SetTarget(arg)
			}
		case "listen":
			if !sh.SpeechAvailable() {
				r.printf("voice input is not available; set recognizer_command in the settings file\n")
				continue
			}
			r.printf("listening...\n")
			if err := sh.Listen(ctx); err == nil {
				r.printf("heard: %s\n", sh.State().Input)
			}
		case "speak":
			_ = sh.Speak(ctx)
		case "history":
			recent := sh.State().Recent
			if len(recent) == 0 {
				r.printf("no recent languages\n")
			}
			for i, code := range recent {
				r.printf("%d. %s\n", i+1, langLabel(code))
			}
		case "help", "h", "?":
			r.printf("%s\n", replHelp)
		case "quit", "q", "exit":
			return nil
		default:
			r.printf("unknown command :%s (try :help)\n", name)
		}
	}
	return sc.Err()
}

// parseLine splits a REPL line. Lines starting with ':' are commands with
// an optional argument; anything else is input text returned as name.
func parseLine(line string) (name, arg string, isCmd bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return line, "", false
	}
	name, arg, _ = strings.Cut(strings.TrimPrefix(trimmed, ":"), " ")
	return strings.ToLower(name), strings.TrimSpace(arg), true
}

// renderer prints finished translations and new errors as the shell state
// changes. A result is printed only for the request it saw start.
type renderer struct {
	mu      sync.Mutex
	w       io.Writer
	pending uint64
	printed uint64
	err     string
}

func (r *renderer) render(st shell.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st.Err != "" && st.Err != r.err {
		fmt.Fprintf(r.w, "error: %s\n", st.Err)
	}
	r.err = st.Err

	if st.Loading {
		r.pending = st.Seq
		return
	}
	if st.Seq != r.pending || st.Seq == r.printed {
		return
	}
	r.printed = st.Seq
	if st.Err == "" {
		line := st.Output
		if st.OfflineMode {
			line += "  (offline)"
		}
		fmt.Fprintf(r.w, "[%s] %s\n", st.TargetLang, line)
	}
}

func (r *renderer) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}
