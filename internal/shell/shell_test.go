package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lingobridge/translation-gateway/internal/domain"
)

type translateCall struct {
	req   domain.TranslationRequest
	reply chan error
}

// scriptedTranslator blocks each call until the test answers it.
type scriptedTranslator struct {
	calls chan translateCall
	audio *domain.Audio
}

func newScriptedTranslator() *scriptedTranslator {
	return &scriptedTranslator{calls: make(chan translateCall, 8)}
}

func (f *scriptedTranslator) Translate(ctx context.Context, req domain.TranslationRequest) (*domain.Translation, error) {
	call := translateCall{req: req, reply: make(chan error, 1)}
	f.calls <- call
	select {
	case err := <-call.reply:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &domain.Translation{Result: domain.TranslationResult{
		OriginalText:   req.Text,
		TranslatedText: strings.ToUpper(req.Text),
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
	}}, nil
}

func (f *scriptedTranslator) TextToSpeech(_ context.Context, req domain.SpeechRequest) (*domain.Audio, error) {
	if f.audio == nil {
		return nil, errors.New("Text-to-speech failed")
	}
	return f.audio, nil
}

func (f *scriptedTranslator) next(t *testing.T) translateCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no translate call")
		return translateCall{}
	}
}

func (f *scriptedTranslator) expectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected translate call for %q", c.req.Text)
	case <-time.After(wait):
	}
}

type fakeRecognizer struct {
	text   string
	err    error
	locale string
}

func (r *fakeRecognizer) Recognize(_ context.Context, locale string) (string, error) {
	r.locale = locale
	return r.text, r.err
}

func newTestShell(t *testing.T, tr Translator, opts Options) *Shell {
	t.Helper()
	opts.Translator = tr
	if opts.SourceLang == "" {
		opts.SourceLang = "en"
	}
	if opts.TargetLang == "" {
		opts.TargetLang = "hi"
	}
	if opts.Debounce == nil {
		opts.Debounce = NewDebouncer(20 * time.Millisecond)
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(opts)
	t.Cleanup(s.Close)
	return s
}

func TestTranslateNowEmptyInput(t *testing.T) {
	tr := newScriptedTranslator()
	s := newTestShell(t, tr, Options{})

	s.Type("   ")
	s.TranslateNow()

	if got := s.State().Err; got != MsgEmptyInput {
		t.Errorf("Err = %q, want %q", got, MsgEmptyInput)
	}
	tr.expectNone(t, 60*time.Millisecond)
}

func TestTypeDebouncesToLastInput(t *testing.T) {
	tr := newScriptedTranslator()
	s := newTestShell(t, tr, Options{})

	s.Type("he")
	s.Type("hel")
	s.Type("hello")

	call := tr.next(t)
	if call.req.Text != "hello" {
		t.Errorf("translated %q, want hello", call.req.Text)
	}
	call.reply <- nil
	s.Wait()
	tr.expectNone(t, 60*time.Millisecond)

	st := s.State()
	if st.Output != "HELLO" || st.Loading {
		t.Errorf("state = %+v", st)
	}
}

func TestShortInputIsNotAutoTranslated(t *testing.T) {
	tr := newScriptedTranslator()
	s := newTestShell(t, tr, Options{})

	s.Type("h")
	s.Type("  ")
	tr.expectNone(t, 80*time.Millisecond)
}

func TestTranslateNowCancelsPendingDebounce(t *testing.T) {
	tr := newScriptedTranslator()
	s := newTestShell(t, tr, Options{Debounce: NewDebouncer(50 * time.Millisecond)})

	s.Type("hello")
	s.TranslateNow()

	tr.next(t).reply <- nil
	s.Wait()
	tr.expectNone(t, 120*time.Millisecond)
}

func TestStaleCompletionDiscarded(t *testing.T) {
	tr := newScriptedTranslator()
	s := newTestShell(t, tr, Options{})

	s.Type("first")
	s.TranslateNow()
	first := tr.next(t)

	s.Type("second")
	s.TranslateNow()
	second := tr.next(t)

	second.reply <- nil
	waitFor(t, func() bool { return s.State().Output == "SECOND" })

	first.reply <- nil
	s.Wait()

	st := s.State()
	if st.Output != "SECOND" {
		t.Errorf("Output = %q, want SECOND", st.Output)
	}
	if st.Loading {
		t.Error("Loading still set")
	}
}

func TestFailureSurfacesMessage(t *testing.T) {
	tr := newScriptedTranslator()
	s := newTestShell(t, tr, Options{})

	s.Type("hello")
	s.TranslateNow()
	tr.next(t).reply <- nil
	s.Wait()

	s.TranslateNow()
	tr.next(t).reply <- errors.New("Translation service error: translation engine timed out")
	s.Wait()

	st := s.State()
	if st.Err != "Translation service error: translation engine timed out" {
		t.Errorf("Err = %q", st.Err)
	}
	if st.Output != "HELLO" || st.Loading {
		t.Errorf("state = %+v", st)
	}
}

func TestHistoryPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileHistory(path)
	if err := store.Save([]string{"bn"}); err != nil {
		t.Fatal(err)
	}

	tr := newScriptedTranslator()
	s := newTestShell(t, tr, Options{History: store})
	if got := s.State().Recent; !reflect.DeepEqual(got, []string{"bn"}) {
		t.Fatalf("loaded Recent = %v", got)
	}

	s.Type("hello")
	s.TranslateNow()
	tr.next(t).reply <- nil
	s.Wait()

	codes, err := NewFileHistory(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(codes, []string{"hi", "bn"}) {
		t.Errorf("persisted = %v, want [hi bn]", codes)
	}
}

func TestSwapAndClear(t *testing.T) {
	tr := newScriptedTranslator()
	s := newTestShell(t, tr, Options{})

	s.Type("hello")
	s.TranslateNow()
	tr.next(t).reply <- nil
	s.Wait()

	s.Swap()
	st := s.State()
	if st.SourceLang != "hi" || st.TargetLang != "en" || st.Input != "HELLO" || st.Output != "hello" {
		t.Errorf("after swap: %+v", st)
	}
	tr.expectNone(t, 60*time.Millisecond)

	s.Clear()
	st = s.State()
	if st.Input != "" || st.Output != "" || st.Err != "" {
		t.Errorf("after clear: %+v", st)
	}
}

func TestLateReplyAfterClearOrSwap(t *testing.T) {
	tests := []struct {
		name       string
		reset      func(s *Shell)
		wantInput  string
		wantOutput string
	}{
		{"clear", (*Shell).Clear, "", ""},
		{"swap", (*Shell).Swap, "", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newScriptedTranslator()
			s := newTestShell(t, tr, Options{})

			s.Type("hello")
			s.TranslateNow()
			call := tr.next(t)

			tt.reset(s)
			call.reply <- nil
			s.Wait()

			st := s.State()
			if st.Input != tt.wantInput || st.Output != tt.wantOutput {
				t.Errorf("input = %q, output = %q, want %q, %q", st.Input, st.Output, tt.wantInput, tt.wantOutput)
			}
			if st.Loading || len(st.Recent) != 0 {
				t.Errorf("state = %+v", st)
			}
		})
	}
}

func TestListen(t *testing.T) {
	tr := newScriptedTranslator()
	rec := &fakeRecognizer{text: "namaste duniya"}
	s := newTestShell(t, tr, Options{Speech: Available(rec), SourceLang: "ta"})

	s.Type("t")
	if err := s.Listen(context.Background()); err != nil {
		t.Fatal(err)
	}
	if rec.locale != "ta-IN" {
		t.Errorf("locale = %q, want ta-IN", rec.locale)
	}
	if got := s.State().Input; got != "namaste duniya" {
		t.Errorf("Input = %q", got)
	}

	call := tr.next(t)
	if call.req.Text != "namaste duniya" {
		t.Errorf("auto-translated %q", call.req.Text)
	}
	call.reply <- nil
	s.Wait()
}

func TestListenUnavailable(t *testing.T) {
	s := newTestShell(t, newScriptedTranslator(), Options{Speech: Unavailable})

	if s.SpeechAvailable() {
		t.Error("SpeechAvailable = true")
	}
	if err := s.Listen(context.Background()); !errors.Is(err, ErrSpeechUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestListenNoSpeech(t *testing.T) {
	rec := &fakeRecognizer{err: ErrNoSpeech}
	s := newTestShell(t, newScriptedTranslator(), Options{Speech: Available(rec)})

	s.SetSource("xx")
	s.Type("k")
	if err := s.Listen(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	st := s.State()
	if st.Listening || st.Input != "k" || st.Err == "" {
		t.Errorf("state = %+v", st)
	}
}

func TestSpeak(t *testing.T) {
	tr := newScriptedTranslator()
	player := &fakePlayer{}
	s := newTestShell(t, tr, Options{Player: player, TempDir: t.TempDir()})

	s.Type("hello")
	s.TranslateNow()
	tr.next(t).reply <- nil
	s.Wait()

	tr.audio = &domain.Audio{ContentType: "audio/mpeg", Body: []byte("ID3")}
	if err := s.Speak(context.Background()); err != nil {
		t.Fatal(err)
	}
	if string(player.content) != "ID3" {
		t.Errorf("played %q", player.content)
	}

	tr.audio = nil
	if err := s.Speak(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if s.State().Err == "" {
		t.Error("speech failure not shown")
	}
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	var mu sync.Mutex
	var inputs []string
	s := newTestShell(t, newScriptedTranslator(), Options{OnChange: func(st State) {
		mu.Lock()
		defer mu.Unlock()
		inputs = append(inputs, st.Input)
	}})

	s.Type("a")
	s.Clear()

	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(inputs, []string{"a", ""}) {
		t.Errorf("inputs = %v", inputs)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
