package sysbot

import (
	"errors"
	"time"
)

// Config holds the sys-botbase connection settings.
type Config struct {
	Address        string
	DialTimeout    time.Duration
	CommandTimeout time.Duration
	// MaxReadSize is the largest peek issued in one command.
	MaxReadSize int
	// SaveBlockChain is the pointer chain to the save block key table.
	SaveBlockChain []int64

	ButtonDelay    time.Duration // pause after a button press
	SaveDelay      time.Duration // pause for the save prompt to finish
	StartGameDelay time.Duration // pause for the game to boot
	SettleDelay    time.Duration // pause for the overworld to reload after a date change
}

// DefaultSaveBlockChain points at the save block accessor of game version 3.0.x.
func DefaultSaveBlockChain() []int64 {
	return []int64{0x47350D8, 0xD8, 0x0, 0x0, 0x30, 0x08}
}

// Validate sets defaults and checks the settings.
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("address is required")
	}

	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}

	if c.CommandTimeout == 0 {
		c.CommandTimeout = 10 * time.Second
	}

	if c.MaxReadSize == 0 {
		c.MaxReadSize = 0x8000
	}

	if c.MaxReadSize < 0x100 {
		return errors.New("max_read_size must be at least 256 bytes")
	}

	if len(c.SaveBlockChain) == 0 {
		c.SaveBlockChain = DefaultSaveBlockChain()
	}

	if c.ButtonDelay == 0 {
		c.ButtonDelay = 500 * time.Millisecond
	}

	if c.SaveDelay == 0 {
		c.SaveDelay = 3 * time.Second
	}

	if c.StartGameDelay == 0 {
		c.StartGameDelay = 20 * time.Second
	}

	if c.SettleDelay == 0 {
		c.SettleDelay = 2 * time.Second
	}

	return nil
}
