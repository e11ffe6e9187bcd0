package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rangedcombat/internal/game/action"
	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

// consoleNotifier prints what a user would see and mirrors it to the log.
type consoleNotifier struct {
	out    io.Writer
	logger *zap.Logger
}

func newConsoleNotifier(out io.Writer, logger *zap.Logger) *consoleNotifier {
	return &consoleNotifier{out: out, logger: logger}
}

func (n *consoleNotifier) Warn(_ context.Context, actorID, text string) {
	n.logger.Debug("warning shown", zap.String("actor", actorID), zap.String("text", text))
	fmt.Fprintf(n.out, "warning: %s\n", text)
}

func (n *consoleNotifier) Info(_ context.Context, actorID, text string) {
	n.logger.Debug("notice shown", zap.String("actor", actorID), zap.String("text", text))
	fmt.Fprintf(n.out, "%s\n", text)
}

func (n *consoleNotifier) Post(_ context.Context, actorID string, msg action.Message) {
	n.logger.Debug("chat posted", zap.String("actor", actorID), zap.String("text", msg.Text))
	fmt.Fprintf(n.out, "[%d action] %s", msg.Actions, msg.Text)
	if len(msg.Traits) > 0 {
		fmt.Fprintf(n.out, " (%s)", strings.Join(msg.Traits, ", "))
	}
	fmt.Fprintln(n.out)
}

// firstChoiceSelector answers selections without prompting: the first weapon
// offered, and the preferred ammunition template when it is loaded.
type firstChoiceSelector struct {
	ammunition string
}

func (s firstChoiceSelector) SelectWeapon(_ context.Context, _ string, candidates []inventory.Weapon) (inventory.Weapon, bool) {
	if len(candidates) == 0 {
		return inventory.Weapon{}, false
	}
	return candidates[0], true
}

func (s firstChoiceSelector) SelectAmmunition(_ context.Context, _ string, _ inventory.Weapon, entries []loading.AmmunitionEntry) (loading.AmmunitionEntry, bool) {
	if len(entries) == 0 {
		return loading.AmmunitionEntry{}, false
	}
	for _, e := range entries {
		if e.TemplateID == s.ammunition {
			return e, true
		}
	}
	return entries[0], true
}
