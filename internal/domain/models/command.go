package models

type CommandKind int

const (
	// CommandUnknown — любой текст, не являющийся /start.
	CommandUnknown CommandKind = iota
	// CommandWelcome — /start без payload.
	CommandWelcome
	// CommandInvalid — payload не разобрался по грамматике.
	CommandInvalid
	CommandRegister
	CommandLogin
)

// Command — разобранная команда из deep-link.
type Command struct {
	Kind     CommandKind
	Login    string
	Language string
}
