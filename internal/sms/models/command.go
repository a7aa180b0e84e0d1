package models

import "strings"

type Action string

const (
	ActionVerify  Action = "VERIFY"
	ActionReport  Action = "REPORT"
	ActionStatus  Action = "STATUS"
	ActionHelp    Action = "HELP"
	ActionUnknown Action = "UNKNOWN"
)

// Command is a parsed inbound message. Description keeps the sender's
// original casing; the jacket number is upper-cased.
type Command struct {
	Action       Action
	JacketNumber string
	Description  string
}

// ParseCommand reads "VERIFY <jn>", "REPORT <jn> <description...>",
// "STATUS <jn>" and "HELP", case-insensitively. Anything else, including a
// known verb missing its arguments, is ActionUnknown.
func ParseCommand(text string) Command {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{Action: ActionUnknown}
	}
	switch verb := Action(strings.ToUpper(fields[0])); verb {
	case ActionVerify, ActionStatus:
		if len(fields) >= 2 {
			return Command{Action: verb, JacketNumber: strings.ToUpper(fields[1])}
		}
	case ActionReport:
		if len(fields) >= 3 {
			return Command{
				Action:       ActionReport,
				JacketNumber: strings.ToUpper(fields[1]),
				Description:  strings.Join(fields[2:], " "),
			}
		}
	case ActionHelp:
		return Command{Action: ActionHelp}
	}
	return Command{Action: ActionUnknown}
}
