package playback

import (
	"fmt"
	"slices"
)

// Command names a controller operation. Scenario files, the play console and
// the engine queue all speak in commands.
type Command string

const (
	CmdOpen               Command = "open"
	CmdCompleteLoading    Command = "complete_loading"
	CmdCompleteTransition Command = "complete_transition"
	CmdAdvance            Command = "advance"
	CmdRetreat            Command = "retreat"
	CmdPause              Command = "pause"
	CmdResume             Command = "resume"
	CmdRestart            Command = "restart"
	CmdAccept             Command = "accept"
	CmdEpilogue           Command = "epilogue"
	CmdFinish             Command = "finish"
	CmdInteract           Command = "interact"
)

var commands = []Command{
	CmdOpen, CmdCompleteLoading, CmdCompleteTransition, CmdAdvance, CmdRetreat,
	CmdPause, CmdResume, CmdRestart, CmdAccept, CmdEpilogue, CmdFinish, CmdInteract,
}

// Commands returns every known command in a stable order.
func Commands() []Command {
	return slices.Clone(commands)
}

// ParseCommand validates a command name.
func ParseCommand(s string) (Command, error) {
	c := Command(s)
	if !slices.Contains(commands, c) {
		return "", fmt.Errorf("unknown command %q", s)
	}
	return c, nil
}

// Do runs cmd against the controller.
func (c *Controller) Do(cmd Command) error {
	switch cmd {
	case CmdOpen:
		return c.Open()
	case CmdCompleteLoading:
		return c.CompleteLoading()
	case CmdCompleteTransition:
		return c.CompleteTransition()
	case CmdAdvance:
		return c.Advance()
	case CmdRetreat:
		return c.Retreat()
	case CmdPause:
		return c.Pause()
	case CmdResume:
		return c.Resume()
	case CmdRestart:
		return c.Restart()
	case CmdAccept:
		return c.Accept()
	case CmdEpilogue:
		return c.EnterEpilogue()
	case CmdFinish:
		return c.Finish()
	case CmdInteract:
		c.Interact()
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
