// Package shell is the headless interactive translator: a state record
// updated through Reduce, with a controller that debounces input, guards
// against stale replies, records recent languages and drives speech input
// and playback.
package shell

import (
	"slices"

	"github.com/lingobridge/translation-gateway/internal/domain"
)

// MsgEmptyInput is shown when a manual translate is requested with no text.
const MsgEmptyInput = "Please enter text to translate"

// State is the whole shell view. It is treated as a value; Reduce returns a
// new State and never mutates its input.
type State struct {
	SourceLang string
	TargetLang string
	Input      string
	Output     string

	Confidence   *float64
	DetectedLang *string
	OfflineMode  bool

	Loading   bool
	Listening bool
	Err       string

	// Recent holds up to MaxRecent target languages, most recent first.
	Recent []string

	// Seq is the sequence number of the latest translate request. Replies
	// carrying any other number are stale.
	Seq uint64
}

// supersede makes any in-flight reply stale.
func (s *State) supersede() {
	s.Seq++
	s.Loading = false
}

// Action is an input to Reduce.
type Action interface{ action() }

type (
	SetInput  struct{ Text string }
	SetSource struct{ Lang string }
	SetTarget struct{ Lang string }
	Swap      struct{}
	Clear     struct{}
	ShowError struct{ Message string }

	// TranslateStarted issues the next sequence number.
	TranslateStarted struct{}

	TranslateSucceeded struct {
		Seq         uint64
		Result      domain.TranslationResult
		OfflineMode bool
	}

	TranslateFailed struct {
		Seq     uint64
		Message string
	}

	ListenStarted  struct{}
	ListenFinished struct {
		Text    string
		Message string
	}

	RecentLoaded struct{ Codes []string }
)

func (SetInput) action()           {}
func (SetSource) action()          {}
func (SetTarget) action()          {}
func (Swap) action()               {}
func (Clear) action()              {}
func (ShowError) action()          {}
func (TranslateStarted) action()   {}
func (TranslateSucceeded) action() {}
func (TranslateFailed) action()    {}
func (ListenStarted) action()      {}
func (ListenFinished) action()     {}
func (RecentLoaded) action()       {}

// Reduce applies a to s.
func Reduce(s State, a Action) State {
	s.Recent = slices.Clone(s.Recent)

	switch a := a.(type) {
	case SetInput:
		s.Input = a.Text

	case SetSource:
		s.SourceLang = a.Lang
		s.supersede()

	case SetTarget:
		s.TargetLang = a.Lang
		s.supersede()

	case Swap:
		s.SourceLang, s.TargetLang = s.TargetLang, s.SourceLang
		s.Input, s.Output = s.Output, s.Input
		s.supersede()

	case Clear:
		s.supersede()
		s.Input = ""
		s.Output = ""
		s.Err = ""
		s.Confidence = nil
		s.DetectedLang = nil
		s.OfflineMode = false

	case ShowError:
		s.Err = a.Message

	case TranslateStarted:
		s.Seq++
		s.Loading = true
		s.Err = ""

	case TranslateSucceeded:
		if a.Seq != s.Seq {
			return s
		}
		s.Loading = false
		s.Err = ""
		s.Output = a.Result.TranslatedText
		s.Confidence = a.Result.Confidence
		s.DetectedLang = a.Result.DetectedLang
		s.OfflineMode = a.OfflineMode
		if a.Result.TargetLang != "" {
			s.Recent = PushHistory(s.Recent, a.Result.TargetLang)
		}

	case TranslateFailed:
		if a.Seq != s.Seq {
			return s
		}
		s.Loading = false
		s.Err = a.Message

	case ListenStarted:
		s.Listening = true
		s.Err = ""

	case ListenFinished:
		s.Listening = false
		if a.Message != "" {
			s.Err = a.Message
			return s
		}
		s.Input = a.Text

	case RecentLoaded:
		s.Recent = nil
		for _, c := range a.Codes {
			if len(s.Recent) == MaxRecent {
				break
			}
			if c != "" && !slices.Contains(s.Recent, c) {
				s.Recent = append(s.Recent, c)
			}
		}
	}

	return s
}
