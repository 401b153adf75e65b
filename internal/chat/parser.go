package chat

import (
	"strconv"
	"strings"
)

const defaultHistoryLimit = 20

// Parse turns one input line into an Intent.
//
// A command without an argument where one is required (e.g. "/join") parses to a Noop
// carrying a usage notice rather than an empty group name.
func Parse(line string) Intent {
	switch {
	case strings.TrimSpace(line) == "":
		return Noop{}
	case strings.HasPrefix(line, "/"):
		return parseCommand(line[1:])
	case strings.HasPrefix(line, "#"):
		group := line[1:]
		if group == "" {
			return Noop{Notice: "usage: #<group>"}
		}
		return SwitchGroup{Group: group}
	case strings.HasPrefix(line, "@"):
		name := line[1:]
		if name == "" {
			return Noop{Notice: "usage: @<peer>"}
		}
		return SwitchPeer{Name: name}
	default:
		return SendText{Text: line}
	}
}

func parseCommand(body string) Intent {
	name, arg, _ := strings.Cut(body, " ")

	switch name {
	case "join":
		if arg == "" {
			return Noop{Notice: "usage: /join <group>"}
		}
		return JoinGroup{Group: arg}
	case "leave":
		if arg == "" {
			return Noop{Notice: "usage: /leave <group>"}
		}
		return LeaveGroup{Group: arg}
	case "status":
		return Status{}
	case "exit", "quit":
		return Exit{}
	case "peers":
		return ListPeers{}
	case "groups":
		return ListGroups{}
	case "history":
		return parseHistory(arg)
	case "help":
		return Help{}
	default:
		return Noop{Notice: "unknown command: /" + name}
	}
}

func parseHistory(arg string) Intent {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return History{Limit: defaultHistoryLimit}
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return Noop{Notice: "usage: /history [count]"}
	}
	return History{Limit: n}
}
