package shell

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/lingobridge/translation-gateway/internal/domain"
	"github.com/lingobridge/translation-gateway/internal/logging"
)

// minAutoTranslateLen is the shortest input the debounce will translate.
const minAutoTranslateLen = 2

// Translator is the part of the gateway client the shell needs.
type Translator interface {
	Translate(ctx context.Context, req domain.TranslationRequest) (*domain.Translation, error)
	TextToSpeech(ctx context.Context, req domain.SpeechRequest) (*domain.Audio, error)
}

// Options configures a Shell.
type Options struct {
	Translator Translator
	History    HistoryStore
	Speech     SpeechCapability
	Player     Player
	Logger     *slog.Logger

	SourceLang string
	TargetLang string
	Debounce   *Debouncer
	// TempDir holds audio files during playback; empty uses the system default.
	TempDir string

	// OnChange receives a snapshot after every state transition. It is
	// called without the shell lock held.
	OnChange func(State)
}

// Shell owns a State and serializes every transition through Reduce under
// one lock. Network calls run on goroutines and report back as actions.
type Shell struct {
	translator Translator
	history    HistoryStore
	speech     SpeechCapability
	player     Player
	logger     *slog.Logger
	debounce   *Debouncer
	tempDir    string
	onChange   func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	state State
}

// New creates a Shell and loads the recent-language history.
func New(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := opts.Debounce
	if debounce == nil {
		debounce = NewDebouncer(DefaultDebounce)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Shell{
		translator: opts.Translator,
		history:    opts.History,
		speech:     opts.Speech,
		player:     opts.Player,
		logger:     logger,
		debounce:   debounce,
		tempDir:    opts.TempDir,
		onChange:   opts.OnChange,
		ctx:        ctx,
		cancel:     cancel,
		state:      State{SourceLang: opts.SourceLang, TargetLang: opts.TargetLang},
	}

	if s.history != nil {
		codes, err := s.history.Load()
		if err != nil {
			logger.Warn("failed to load recent languages", logging.Err(err))
		}
		s.state = Reduce(s.state, RecentLoaded{Codes: codes})
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SpeechAvailable reports whether Listen can be used.
func (s *Shell) SpeechAvailable() bool { return s.speech.Available() }

// Type replaces the input text and schedules an auto-translate once it has
// been stable for the debounce delay.
func (s *Shell) Type(text string) {
	s.dispatch(SetInput{Text: text})
	s.scheduleAutoTranslate(text)
}

// TranslateNow translates the current input immediately, dropping any
// pending auto-translate.
func (s *Shell) TranslateNow() {
	s.debounce.Cancel()

	s.mu.Lock()
	if strings.TrimSpace(s.state.Input) == "" {
		s.applyLocked(ShowError{Message: MsgEmptyInput})
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return
	}
	s.startTranslateLocked()
}

// Swap exchanges languages and the input and output text.
func (s *Shell) Swap() {
	s.debounce.Cancel()
	s.dispatch(Swap{})
}

// Clear empties input, output and error.
func (s *Shell) Clear() {
	s.debounce.Cancel()
	s.dispatch(Clear{})
}

// SetSource selects the source language.
func (s *Shell) SetSource(code string) { s.dispatch(SetSource{Lang: code}) }

// SetTarget selects the target language.
func (s *Shell) SetTarget(code string) { s.dispatch(SetTarget{Lang: code}) }

// Listen records one utterance in the source language's locale and uses
// it as the new input. It blocks until recognition ends.
func (s *Shell) Listen(ctx context.Context) error {
	if !s.speech.Available() {
		return ErrSpeechUnavailable
	}

	s.mu.Lock()
	s.applyLocked(ListenStarted{})
	locale := LocaleFor(s.state.SourceLang)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	text, err := s.speech.Recognize(ctx, locale)
	if err != nil {
		s.dispatch(ListenFinished{Message: recognitionMessage(err)})
		return err
	}

	s.dispatch(ListenFinished{Text: text})
	s.scheduleAutoTranslate(text)
	return nil
}

// Speak plays the current output in the target language. Failures are
// shown as the state error and returned.
func (s *Shell) Speak(ctx context.Context) error {
	st := s.State()
	if strings.TrimSpace(st.Output) == "" {
		return nil
	}
	if s.player == nil {
		return errors.New("no audio player configured")
	}

	audio, err := s.translator.TextToSpeech(ctx, domain.SpeechRequest{Text: st.Output, Lang: st.TargetLang})
	if err == nil {
		err = PlayAudio(ctx, s.player, audio, s.tempDir)
	}
	if err != nil {
		s.dispatch(ShowError{Message: err.Error()})
		return err
	}
	return nil
}

// Wait blocks until in-flight translations have reported back.
func (s *Shell) Wait() { s.wg.Wait() }

// Close cancels pending work and waits for in-flight requests.
func (s *Shell) Close() {
	s.debounce.Cancel()
	s.cancel()
	s.wg.Wait()
}

func (s *Shell) scheduleAutoTranslate(text string) {
	if strings.TrimSpace(text) == "" || utf8.RuneCountInString(text) < minAutoTranslateLen {
		s.debounce.Cancel()
		return
	}
	s.debounce.Trigger(s.autoTranslate)
}

func (s *Shell) autoTranslate() {
	s.mu.Lock()
	if strings.TrimSpace(s.state.Input) == "" {
		s.mu.Unlock()
		return
	}
	s.startTranslateLocked()
}

// startTranslateLocked issues a request for the current input. It must be
// called with s.mu held and releases it.
func (s *Shell) startTranslateLocked() {
	s.applyLocked(TranslateStarted{})
	seq := s.state.Seq
	req := domain.TranslationRequest{
		Text:       s.state.Input,
		SourceLang: s.state.SourceLang,
		TargetLang: s.state.TargetLang,
	}
	snap := s.snapshotLocked()
	s.wg.Add(1)
	s.mu.Unlock()
	s.notify(snap)

	go func() {
		defer s.wg.Done()

		out, err := s.translator.Translate(s.ctx, req)
		if err != nil {
			s.finish(TranslateFailed{Seq: seq, Message: err.Error()})
			return
		}
		s.finish(TranslateSucceeded{Seq: seq, Result: out.Result, OfflineMode: out.OfflineMode})
	}()
}

func (s *Shell) finish(a Action) {
	s.mu.Lock()
	before := s.state.Recent
	s.applyLocked(a)
	// Saved under the lock so concurrent completions persist in order.
	if s.history != nil && !slices.Equal(before, s.state.Recent) {
		if err := s.history.Save(s.state.Recent); err != nil {
			s.logger.Warn("failed to save recent languages", logging.Err(err))
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Shell) dispatch(a Action) {
	s.mu.Lock()
	s.applyLocked(a)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Shell) applyLocked(a Action) {
	s.state = Reduce(s.state, a)
}

func (s *Shell) snapshotLocked() State {
	snap := s.state
	snap.Recent = slices.Clone(s.state.Recent)
	return snap
}

func (s *Shell) notify(snap State) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

func recognitionMessage(err error) string {
	if errors.Is(err, ErrNoSpeech) {
		return "No speech detected. Please try again."
	}
	return "Speech recognition error: " + err.Error()
}
