package sysbot

import (
	"context"
	"time"

	"github.com/ethpandaops/raid-crawler/internal/session"
)

// step is one scripted console input followed by a pause.
type step struct {
	command string
	wait    time.Duration
}

func (c *Client) run(ctx context.Context, op string, steps []step, progress session.ProgressFunc) error {
	for i, s := range steps {
		if err := c.send(ctx, s.command); err != nil {
			return session.Wrap(op, err)
		}

		if err := sleep(ctx, s.wait); err != nil {
			return err
		}

		if progress != nil {
			progress((i + 1) * 100 / len(steps))
		}
	}

	return nil
}

// AdvanceDate implements session.Session. The clock is moved forward one day
// from the HOME menu, then the game is resumed and given time to reroll its
// raids. The sequence does not depend on skips.
func (c *Client) AdvanceDate(ctx context.Context, skips int, progress session.ProgressFunc) error {
	c.log.WithField("skips", skips).Debug("Advancing date")

	return c.run(ctx, "advance date", []step{
		{command: "click HOME", wait: c.cfg.ButtonDelay * 2},
		{command: "timeSkipForward", wait: c.cfg.ButtonDelay},
		{command: "click HOME", wait: c.cfg.ButtonDelay * 2},
		{command: "click A", wait: c.cfg.SettleDelay},
	}, progress)
}

// SaveGame implements session.Session.
func (c *Client) SaveGame(ctx context.Context) error {
	c.log.Info("Saving game")

	return c.run(ctx, "save game", []step{
		{command: "click X", wait: c.cfg.ButtonDelay * 2},
		{command: "click R", wait: c.cfg.ButtonDelay * 2},
		{command: "click A", wait: c.cfg.SaveDelay},
		{command: "click B", wait: c.cfg.ButtonDelay},
		{command: "click B", wait: c.cfg.ButtonDelay},
	}, nil)
}

// CloseGame implements session.Session.
func (c *Client) CloseGame(ctx context.Context) error {
	c.log.Info("Closing game")

	return c.run(ctx, "close game", []step{
		{command: "click HOME", wait: c.cfg.ButtonDelay * 2},
		{command: "click X", wait: c.cfg.ButtonDelay},
		{command: "click A", wait: c.cfg.ButtonDelay * 4},
	}, nil)
}

// StartGame implements session.Session.
func (c *Client) StartGame(ctx context.Context) error {
	c.log.Info("Starting game")

	return c.run(ctx, "start game", []step{
		{command: "click A", wait: c.cfg.ButtonDelay * 2},
		{command: "click A", wait: c.cfg.StartGameDelay},
		{command: "click A", wait: c.cfg.SettleDelay * 2},
	}, nil)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
