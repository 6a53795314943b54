// Package playback plays a folder of audio files: enumerate, shuffle, then
// hand each track to an external player process until stopped or exhausted.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/despertad/wakefolder/pkg/logger"
	"github.com/google/uuid"
)

var ErrNoAudioFiles = errors.New("no audio files in folder")

// Controller owns at most one playback session; starting a new session
// stops the previous one first, so two tracks never sound at once.
type Controller struct {
	log      *logger.Logger
	player   string
	maxFiles int
	maxDepth int

	mu      sync.Mutex
	current *session
}

func New(l *logger.Logger, player string, maxFiles, maxDepth int) *Controller {
	return &Controller{
		log:      l,
		player:   player,
		maxFiles: maxFiles,
		maxDepth: maxDepth,
	}
}

// Start scans the folder, shuffles the result and begins sequential
// playback in the background. The call returns as soon as the session is
// running; it does not wait for any audio.
func (c *Controller) Start(_ context.Context, folderURI string, volume float64) error {
	files, err := ScanFolder(folderURI, c.maxDepth, c.maxFiles)
	if err != nil {
		return fmt.Errorf("playback - Start - ScanFolder: %w", err)
	}
	if len(files) == 0 {
		return ErrNoAudioFiles
	}

	rand.Shuffle(len(files), func(i, j int) {
		files[i], files[j] = files[j], files[i]
	})

	s := newSession(c.log, c.player, files, volume)

	c.mu.Lock()
	old := c.current
	c.current = s
	c.mu.Unlock()

	if old != nil {
		old.stop()
	}
	go s.run()

	return nil
}

// Stop ends the active session, killing any running player process.
// Stopping with no session is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	s := c.current
	c.current = nil
	c.mu.Unlock()

	if s != nil {
		s.stop()
	}
}

type session struct {
	id     uuid.UUID
	log    *logger.Logger
	player string
	files  []string
	volume float64

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(l *logger.Logger, player string, files []string, volume float64) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		id:     uuid.New(),
		log:    l,
		player: player,
		files:  files,
		volume: volume,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (s *session) run() {
	defer close(s.done)

	s.log.Info("playback session started",
		slog.String("session", s.id.String()),
		slog.Int("tracks", len(s.files)),
	)

	for _, file := range s.files {
		if s.ctx.Err() != nil {
			break
		}
		if err := s.play(file); err != nil {
			if s.ctx.Err() != nil {
				break
			}
			// Unplayable track: skip to the next one.
			s.log.Warn("track failed, skipping",
				logger.Err(err),
				slog.String("session", s.id.String()),
				slog.String("track", filepath.Base(file)),
			)
		}
	}

	s.log.Info("playback session finished", slog.String("session", s.id.String()))
}

func (s *session) play(file string) error {
	args := PlayerArgs(s.player, file, s.volume)

	cmd := exec.CommandContext(s.ctx, s.player, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("playback - play - cmd.Start: %w", err)
	}

	s.log.Debug("track started",
		slog.String("session", s.id.String()),
		slog.String("track", filepath.Base(file)),
	)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("playback - play - cmd.Wait: %w", err)
	}
	return nil
}

func (s *session) stop() {
	s.cancel()
	<-s.done
}

// PlayerArgs builds the argument list for the configured player binary.
// Volume maps from the [0,1] fraction to the player's own scale.
func PlayerArgs(player, file string, volume float64) []string {
	vol := int(volume * 100)
	if vol < 0 {
		vol = 0
	}
	if vol > 100 {
		vol = 100
	}

	switch filepath.Base(player) {
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", strconv.Itoa(vol), file}
	case "mpv":
		return []string{"--no-video", "--really-quiet", "--volume=" + strconv.Itoa(vol), file}
	case "afplay":
		return []string{"-v", strconv.FormatFloat(volume, 'f', 2, 64), file}
	default:
		return []string{file}
	}
}
