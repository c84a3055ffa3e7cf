package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lingobridge/translation-gateway/internal/config"
	"github.com/lingobridge/translation-gateway/internal/domain"
	"github.com/lingobridge/translation-gateway/internal/languages"
	"github.com/lingobridge/translation-gateway/internal/shell"
)

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd(a *app) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var regional, general map[string]string
			if local {
				reg := languages.List()
				regional, general = reg.Regional, reg.General
			} else {
				list, err := a.client.Languages(cmd.Context())
				if err != nil {
					return err
				}
				regional, general = list.Regional, list.General
			}

			out := cmd.OutOrStdout()
			printGroup(out, "Indian languages", regional)
			fmt.Fprintln(out)
			printGroup(out, "Other languages", general)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Use the built-in list instead of asking the gateway")
	return cmd
}

func printGroup(w io.Writer, title string, group map[string]string) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(group))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, code := range slices.Sorted(maps.Keys(group)) {
		fmt.Fprintf(tw, "  %s\t%s\n", code, group[code])
	}
	tw.Flush()
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd(a *app) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "translate TEXT...",
		Short: "Translate text once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return errors.New(shell.MsgEmptyInput)
			}

			out, err := a.client.Translate(cmd.Context(), domain.TranslationRequest{
				Text:       text,
				SourceLang: a.settings.SourceLang,
				TargetLang: a.settings.TargetLang,
			})
			if err != nil {
				return err
			}
			a.recordTarget(a.settings.TargetLang)

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, out.Result.TranslatedText)
			if details {
				printDetails(w, out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "Show confidence, detected language and offline mode")
	return cmd
}

func printDetails(w io.Writer, t *domain.Translation) {
	r := t.Result
	fmt.Fprintf(w, "  %s -> %s\n", langLabel(r.SourceLang), langLabel(r.TargetLang))
	if r.Confidence != nil {
		fmt.Fprintf(w, "  confidence: %.0f%%\n", *r.Confidence*100)
	}
	if r.DetectedLang != nil {
		fmt.Fprintf(w, "  detected:   %s\n", langLabel(*r.DetectedLang))
	}
	if t.OfflineMode {
		fmt.Fprintln(w, "  offline mode")
	}
}

// ---------------------------------------------------------------------------
// batch
// ---------------------------------------------------------------------------

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Translate one text per line from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			texts, err := readLines(in)
			if err != nil {
				return err
			}
			if len(texts) == 0 {
				return errors.New("no texts to translate")
			}
			if len(texts) > domain.MaxBatchSize {
				return fmt.Errorf("%d texts given, at most %d are allowed per batch", len(texts), domain.MaxBatchSize)
			}

			results, err := a.client.BatchTranslate(cmd.Context(), domain.BatchRequest{
				Texts:      texts,
				SourceLang: a.settings.SourceLang,
				TargetLang: a.settings.TargetLang,
			})
			if err != nil {
				return err
			}
			a.recordTarget(a.settings.TargetLang)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\n", r.OriginalText, r.TranslatedText)
			}
			return tw.Flush()
		},
	}

	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// ---------------------------------------------------------------------------
// speak
// ---------------------------------------------------------------------------

func newSpeakCmd(a *app) *cobra.Command {
	var (
		lang    string
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "speak TEXT...",
		Short: "Synthesize speech and play it or save it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lang == "" {
				lang = a.settings.TargetLang
			}

			audio, err := a.client.TextToSpeech(cmd.Context(), domain.SpeechRequest{
				Text: strings.Join(args, " "),
				Lang: lang,
			})
			if err != nil {
				return err
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, audio.Body, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(audio.Body), outFile)
				return nil
			}
			return shell.PlayAudio(cmd.Context(), &shell.CommandPlayer{Command: a.settings.PlayerCommand}, audio, "")
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Speech language (defaults to --to)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write audio to this file instead of playing it")
	return cmd
}

// ---------------------------------------------------------------------------
// history
// ---------------------------------------------------------------------------

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recently used target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := a.history.Load()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(codes) == 0 {
				fmt.Fprintln(w, "no recent languages")
				return nil
			}
			for i, code := range codes {
				fmt.Fprintf(w, "%d. %s\n", i+1, langLabel(code))
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func newConfigCmd(a *app) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective settings, or write them with --write",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if write {
				if err := config.SaveSettings(a.configPath, a.settings); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.configPath)
				return nil
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.settings); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Write the effective settings to the settings file")
	return cmd
}
