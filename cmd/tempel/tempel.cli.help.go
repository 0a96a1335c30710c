package main

import (
	"fmt"
	"io"
	"strings"
)

// helpTopicNames lists what "tempel help" accepts, in the order suggestions
// are tried.
var helpTopicNames = []string{CmdNameRender, CmdNameValidate, CmdNameVersion, CmdNameHelp, HelpTopicSyntax}

func helpText(topic string) (string, bool) {
	switch topic {
	case CmdNameRender:
		return HelpRenderUsage, true
	case CmdNameValidate:
		return HelpValidateUsage, true
	case CmdNameVersion:
		return HelpVersionUsage, true
	case CmdNameHelp:
		return HelpHelpUsage, true
	case HelpTopicSyntax:
		return HelpSyntaxUsage, true
	}
	return "", false
}

func runHelp(args []string, stdout io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stdout, HelpMainUsage)
		return ExitCodeSuccess
	}

	if text, ok := helpText(args[0]); ok {
		fmt.Fprintln(stdout, text)
		return ExitCodeSuccess
	}

	fmt.Fprintf(stdout, FmtErrorWithDetail, ErrMsgUnknownCommand, args[0])
	if suggestion := suggestTopic(args[0]); suggestion != "" {
		fmt.Fprintf(stdout, HelpFmtSuggestion, suggestion)
	}
	fmt.Fprintln(stdout, HelpMainUsage)
	return ExitCodeUsageError
}

// suggestTopic returns the first topic that starts with name or that name
// starts with, ignoring case. Names shorter than two characters get no
// suggestion.
func suggestTopic(name string) string {
	name = strings.ToLower(name)
	if len(name) < 2 {
		return ""
	}
	for _, topic := range helpTopicNames {
		if strings.HasPrefix(topic, name) || strings.HasPrefix(name, topic) {
			return topic
		}
	}
	return ""
}
