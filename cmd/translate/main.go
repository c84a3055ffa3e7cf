// Package main is the terminal front-end of the translation gateway.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lingobridge/translation-gateway/internal/client"
	"github.com/lingobridge/translation-gateway/internal/config"
	"github.com/lingobridge/translation-gateway/internal/languages"
	"github.com/lingobridge/translation-gateway/internal/logging"
	"github.com/lingobridge/translation-gateway/internal/shell"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	apiURL     string
	from       string
	to         string
	verbose    bool

	settings config.Settings
	client   *client.Client
	history  *shell.FileHistory
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "translate",
		Short: "Translate text through the LingoBridge gateway",
		Long: `translate talks to a LingoBridge translation gateway.

Commands:
  languages   List supported languages
  translate   Translate text once
  batch       Translate one text per line from a file or stdin
  speak       Synthesize speech for text
  history     Show recently used target languages
  shell       Interactive translator with auto-translate
  config      Show or write the settings file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultSettingsPath(), "Settings file")
	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "Gateway API base URL")
	root.PersistentFlags().StringVarP(&a.from, "from", "f", "", "Source language code")
	root.PersistentFlags().StringVarP(&a.to, "to", "t", "", "Target language code")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		newLanguagesCmd(a),
		newTranslateCmd(a),
		newBatchCmd(a),
		newSpeakCmd(a),
		newHistoryCmd(a),
		newShellCmd(a),
		newConfigCmd(a),
	)

	return root
}

func (a *app) load(cmd *cobra.Command) error {
	s, err := config.LoadSettings(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api") {
		s.APIURL = a.apiURL
	}
	if flags.Changed("from") {
		s.SourceLang = a.from
	}
	if flags.Changed("to") {
		s.TargetLang = a.to
	}
	for _, code := range []string{s.SourceLang, s.TargetLang} {
		if !languages.Supported(code) {
			return fmt.Errorf("unsupported language %q (see 'translate languages')", code)
		}
	}

	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.logger = logging.New(cmd.ErrOrStderr(), logging.Options{Level: level, Colored: isTerminal(cmd.ErrOrStderr())})
	a.settings = s
	a.client = client.New(s.APIURL, client.Options{})
	a.history = shell.NewFileHistory(s.HistoryPath)
	return nil
}

// recordTarget pushes code onto the persisted recent-language list.
func (a *app) recordTarget(code string) {
	codes, err := a.history.Load()
	if err != nil {
		a.logger.Warn("failed to load recent languages", logging.Err(err))
	}
	if err := a.history.Save(shell.PushHistory(codes, code)); err != nil {
		a.logger.Warn("failed to save recent languages", logging.Err(err))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func langLabel(code string) string {
	if name := languages.Name(code); name != "" {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "translate: %s\n", strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}
