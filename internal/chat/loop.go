// Package chat runs the interactive line-oriented session between the user
// and the agent.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dotcommander/azchat/internal/present"
)

// Agent is the conversational capability the loop drives. Chat must not
// fail: per-turn errors are part of the returned reply.
type Agent interface {
	Chat(ctx context.Context, userText, systemText string) string
}

// exitWords end the session, matched case-insensitively.
var exitWords = []string{"quit", "exit", "bye"}

// IsExitWord reports whether input asks to end the session.
func IsExitWord(input string) bool {
	for _, w := range exitWords {
		if strings.EqualFold(strings.TrimSpace(input), w) {
			return true
		}
	}
	return false
}

// Loop reads user lines and relays them to the agent, one outstanding turn
// at a time.
type Loop struct {
	agent      Agent
	in         io.Reader
	out        io.Writer
	systemText string
}

// New creates a session loop reading from in and writing the prompt and
// replies to out.
func New(agent Agent, in io.Reader, out io.Writer, systemText string) *Loop {
	return &Loop{agent: agent, in: in, out: out, systemText: systemText}
}

// Run drives the session until an exit keyword, end of input, or context
// cancellation. It returns the scanner error, if any; a canceled context is
// a normal termination, not an error.
func (l *Loop) Run(ctx context.Context) error {
	styles := present.StderrStyles()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	scanner := bufio.NewScanner(l.in)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprintf(l.out, "\n%s ", styles.Prompt.Render("You:"))

		var input string
		select {
		case <-ctx.Done():
			log.Info("session interrupted")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			input = line
		}

		if strings.TrimSpace(input) == "" {
			continue
		}
		if IsExitWord(input) {
			log.Info("goodbye")
			return nil
		}

		reply := l.agent.Chat(ctx, input, l.systemText)
		fmt.Fprintf(l.out, "%s %s\n", styles.Assistant.Render("Assistant:"), reply)
	}
}
