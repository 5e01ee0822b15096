// Package clientcore implements the interactive client: translating
// user command lines into outbound protocol messages, and the
// connection state machine that sends them and prints received
// deliveries.
package clientcore

import (
	"errors"
	"regexp"
)

// ErrCommandParse is returned when a line matches no known command
// grammar.
var ErrCommandParse = errors.New("clientcore: cannot parse command")

// CommandKind identifies which command a line parsed to.
type CommandKind int

const (
	CommandConnect CommandKind = iota
	CommandDisconnect
	CommandSubscribe
	CommandUnsubscribe
	CommandPublish
)

// Command is a parsed user command line.
type Command struct {
	Kind       CommandKind
	Port       string // CommandConnect
	ClientName string // CommandConnect; accepted but never transmitted
	Topic      string // Subscribe/Unsubscribe/Publish
	Data       string // Publish
}

var (
	reConnect     = regexp.MustCompile(`^CONNECT ([0-9]+) (.+)$`)
	reDisconnect  = regexp.MustCompile(`^DISCONNECT$`)
	reSubscribe   = regexp.MustCompile(`^SUBSCRIBE ([^ ]+)$`)
	reUnsubscribe = regexp.MustCompile(`^UNSUBSCRIBE ([^ ]+)$`)
	rePublish     = regexp.MustCompile(`^PUBLISH ([^ ]+) (.+)$`)
)

// ParseCommand translates one input line into a Command, or
// ErrCommandParse if the line matches no known grammar.
func ParseCommand(line string) (Command, error) {
	if m := reConnect.FindStringSubmatch(line); m != nil {
		return Command{Kind: CommandConnect, Port: m[1], ClientName: m[2]}, nil
	}
	if reDisconnect.MatchString(line) {
		return Command{Kind: CommandDisconnect}, nil
	}
	if m := reSubscribe.FindStringSubmatch(line); m != nil {
		return Command{Kind: CommandSubscribe, Topic: m[1]}, nil
	}
	if m := reUnsubscribe.FindStringSubmatch(line); m != nil {
		return Command{Kind: CommandUnsubscribe, Topic: m[1]}, nil
	}
	if m := rePublish.FindStringSubmatch(line); m != nil {
		return Command{Kind: CommandPublish, Topic: m[1], Data: m[2]}, nil
	}
	return Command{}, ErrCommandParse
}
