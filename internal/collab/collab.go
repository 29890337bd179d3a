// Package collab declares the interfaces of external collaborators the
// engine consumes: the signed-in account, runtime connectivity, and the
// story/speech services the surrounding product provides. The engine never
// depends on their implementations.
package collab

import "context"

// AccountProvider exposes the signed-in account, if any.
type AccountProvider interface {
	// CurrentAccountID returns the owning account id, or "" when signed out.
	CurrentAccountID() string
}

// Connectivity reports network reachability and delivers transitions.
type Connectivity interface {
	IsOnline() bool
	// Events delivers true on going online and false on going offline.
	// Subscribers must keep draining the channel.
	Events() <-chan bool
}

// StoryGenerator is the opaque generative AI entry point. Prompt building
// and model choice belong to the caller.
type StoryGenerator interface {
	GenerateStoryResponse(ctx context.Context, prompt string) (string, error)
}

// SpeakOptions selects voice parameters for speech synthesis.
type SpeakOptions struct {
	Voice string
	Rate  float64
}

// Speaker is the opaque text-to-speech entry point.
type Speaker interface {
	Speak(ctx context.Context, text string, opts SpeakOptions) error
}

// StaticAccount is an AccountProvider for a fixed account id, used by the
// daemon where the id comes from configuration.
type StaticAccount string

func (a StaticAccount) CurrentAccountID() string { return string(a) }

// AlwaysOnline is a Connectivity implementation for environments without a
// reachability signal; the coordinator then relies on remote errors alone.
type AlwaysOnline struct{}

func (AlwaysOnline) IsOnline() bool      { return true }
func (AlwaysOnline) Events() <-chan bool { return nil }

// AlwaysOffline is a Connectivity implementation for sessions that start
// without a reachable remote store; mutations queue locally.
type AlwaysOffline struct{}

func (AlwaysOffline) IsOnline() bool      { return false }
func (AlwaysOffline) Events() <-chan bool { return nil }
