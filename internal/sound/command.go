package sound

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	// ErrNoDefaultSound is returned when no notification sound file exists.
	ErrNoDefaultSound = errors.New("no default notification sound")
	// ErrNoPlayer is returned when no audio player executable is installed.
	ErrNoPlayer = errors.New("no audio player found")
)

// DefaultSoundCandidates lists well-known notification sounds, most
// preferred first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var DefaultSoundCandidates = []string{
	"/usr/share/sounds/freedesktop/stereo/message-new-instant.oga",
	"/usr/share/sounds/freedesktop/stereo/message.oga",
	"/usr/share/sounds/freedesktop/stereo/bell.oga",
	"/usr/share/sounds/alsa/Front_Center.wav",
	"/System/Library/Sounds/Glass.aiff",
}

// DefaultPlayerCandidates lists audio players tried in order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var DefaultPlayerCandidates = []string{
	"paplay",
	"pw-play",
	"aplay",
	"afplay",
}

// Command plays a sound file through an external player.
type Command struct {
	// player overrides the executable; empty means auto-detect.
	player string
	// file overrides the sound; empty means the default notification sound.
	file string
	// sounds are the default sound candidates.
	sounds []string
	// players are the player candidates.
	players []string
	// lookPath finds executables.
	lookPath func(file string) (string, error)
}

// NewCommand creates a command player; empty arguments mean auto-detect.
func NewCommand(player, file string) *Command {
	return &Command{
		player:   player,
		file:     file,
		sounds:   DefaultSoundCandidates,
		players:  DefaultPlayerCandidates,
		lookPath: exec.LookPath,
	}
}

// Play resolves the sound and the player and waits for playback to end.
func (c *Command) Play(ctx context.Context) error {
	file, err := c.resolveSound()
	if err != nil {
		return err
	}

	player, args, err := c.resolvePlayer()
	if err != nil {
		return err
	}

	args = append(args, file)

	//nolint:gosec // Player and file come from local configuration.
	output, err := exec.CommandContext(ctx, player, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("play %s with %s: %w: %s", file, player, err, strings.TrimSpace(string(output)))
	}

	return nil
}

// resolveSound returns the configured file or the first existing default.
func (c *Command) resolveSound() (string, error) {
	if c.file != "" {
		if _, err := os.Stat(c.file); err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoDefaultSound, err)
		}

		return c.file, nil
	}

	return ResolveDefaultSound(c.sounds)
}

// resolvePlayer returns the executable and any leading arguments.
func (c *Command) resolvePlayer() (string, []string, error) {
	if fields := strings.Fields(c.player); len(fields) > 0 {
		path, err := c.lookPath(fields[0])
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrNoPlayer, err)
		}

		return path, fields[1:], nil
	}

	for _, candidate := range c.players {
		if path, err := c.lookPath(candidate); err == nil {
			return path, nil, nil
		}
	}

	return "", nil, ErrNoPlayer
}

// ResolveDefaultSound returns the first candidate that exists as a file.
func ResolveDefaultSound(candidates []string) (string, error) {
	for _, candidate := range candidates {
		info, err := os.Stat(filepath.Clean(candidate))
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", ErrNoDefaultSound
}
