// Package commands implements the bot's chat command processor.
package commands

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/FireRedz/gulag/internal/bancho"
	"github.com/FireRedz/gulag/internal/constants"
)

// handler runs one command. args excludes the trigger itself.
type handler func(ctx context.Context, p *bancho.Player, target string, args []string) string

// command is a registered trigger with its privilege gate.
type command struct {
	trigger string
	priv    constants.Privileges
	public  bool
	doc     string
	fn      handler
}

// Processor dispatches prefixed chat messages to commands.
type Processor struct {
	srv    *bancho.Server
	prefix string
	cmds   []command
}

// New builds the processor with the built-in command set.
func New(srv *bancho.Server, prefix string) *Processor {
	pr := &Processor{srv: srv, prefix: prefix}
	pr.cmds = []command{
		{
			trigger: "help",
			priv:    constants.PrivNormal,
			public:  false,
			doc:     "Show information of all documented commands.",
			fn:      pr.help,
		},
		{
			trigger: "roll",
			priv:    constants.PrivNormal,
			public:  true,
			doc:     "Roll an n-sided die where n is the number you write (100 if empty).",
			fn:      pr.roll,
		},
		{
			trigger: "alert",
			priv:    constants.PrivAdmin,
			public:  false,
			doc:     "Send a notification to all players.",
			fn:      pr.alert,
		},
		{
			trigger: "alertu",
			priv:    constants.PrivAdmin,
			public:  false,
			doc:     "Send a notification to a specific player by name.",
			fn:      pr.alertUser,
		},
	}
	return pr
}

// Process implements bancho.CommandProcessor.
func (pr *Processor) Process(ctx context.Context, p *bancho.Player, target, msg string) (*bancho.CommandResult, bool) {
	if !strings.HasPrefix(msg, pr.prefix) {
		return nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(msg, pr.prefix))
	if len(fields) == 0 {
		return nil, false
	}
	trigger, args := strings.ToLower(fields[0]), fields[1:]

	for _, cmd := range pr.cmds {
		if cmd.trigger != trigger {
			continue
		}
		if p.Priv&cmd.priv == 0 {
			// Hidden from players who can't run it.
			return nil, true
		}
		resp := cmd.fn(ctx, p, target, args)
		return &bancho.CommandResult{Public: cmd.public, Resp: resp}, true
	}
	return nil, true
}

func (pr *Processor) help(ctx context.Context, p *bancho.Player, target string, args []string) string {
	var lines []string
	for _, cmd := range pr.cmds {
		if cmd.doc != "" && p.Priv&cmd.priv != 0 {
			lines = append(lines, fmt.Sprintf("%s%s: %s", pr.prefix, cmd.trigger, cmd.doc))
		}
	}
	return strings.Join(lines, "\n")
}

// maxRoll caps !roll arguments to keep the output readable.
const maxRoll = 32767

func (pr *Processor) roll(ctx context.Context, p *bancho.Player, target string, args []string) string {
	sides := 100
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			sides = min(n, maxRoll)
		}
	}
	return fmt.Sprintf("%s rolls %d points!", p.Name, rand.Intn(sides))
}

func (pr *Processor) alert(ctx context.Context, p *bancho.Player, target string, args []string) string {
	if len(args) < 1 {
		return "Invalid syntax: !alert <msg>"
	}
	pr.srv.NotifyAll(strings.Join(args, " "))
	return "Alert sent."
}

func (pr *Processor) alertUser(ctx context.Context, p *bancho.Player, target string, args []string) string {
	if len(args) < 2 {
		return "Invalid syntax: !alertu <name> <msg>"
	}
	t := pr.srv.Roster().ByName(args[0])
	if t == nil {
		return "Could not find a user by that name."
	}
	t.Notify(strings.Join(args[1:], " "))
	return "Alert sent."
}
