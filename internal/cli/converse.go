package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/florinato/mongoagent/internal/agent"
	"github.com/florinato/mongoagent/internal/service"
)

// exitWords end an interactive chat.
var exitWords = map[string]bool{"exit": true, "quit": true, "salir": true}

func isExitWord(input string) bool {
	return exitWords[strings.ToLower(strings.TrimSpace(input))]
}

// confirmFunc decides whether a dangerous command may run.
type confirmFunc func(command string) (bool, error)

// huhConfirm asks on the terminal.
func huhConfirm(command string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("This command may modify or delete data. Run it?").
				Description(command).
				Affirmative("Run").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return ok, nil
}

// alwaysConfirm approves every command without asking.
func alwaysConfirm(string) (bool, error) { return true, nil }

// converse runs one user request to completion on session id, settling
// any confirmations through confirm. Commands and their output are printed
// as they appear in the history.
func converse(ctx context.Context, svc *service.Service, id, query string, confirm confirmFunc, p *printer) (*agent.Result, error) {
	seen := 0
	if turns, err := svc.History(id); err == nil {
		seen = len(turns)
	}

	res, err := svc.Advance(ctx, id, service.Request{Query: query})
	for err == nil && res.Status == agent.StatusConfirmationRequired {
		seen = p.turns(svc, id, seen)
		p.confirmation(res.Command)

		approved, cerr := confirm(res.Command)
		if cerr != nil {
			approved = false
		}
		res, err = svc.Advance(ctx, id, service.Request{
			Approve:          &approved,
			ConfirmedCommand: res.Command,
		})
	}
	if err != nil {
		return nil, err
	}
	p.turns(svc, id, seen)
	p.result(res)
	return res, nil
}
