package letluck

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/session"
)

// SettlePoll is how often the default Settle checks a session.
const SettlePoll = 20 * time.Millisecond

// Runner drives a Session from line-based input.
//
// Each line is one command:
//
//	N          open the Nth tile (category, node or item)
//	d          let luck decide from here
//	r          replay the last decision
//	b          back one level
//	h          home
//	j N        jump to the Nth breadcrumb
//	p ITEM     pick an item by id
//	q          quit
type Runner struct {
	Input  io.Reader
	Output io.Writer
	// Prompt is printed before each read. Empty disables it.
	Prompt string
	// Settle blocks until the session is idle again.
	Settle func(ctx context.Context, s *session.Session)
}

// NewRunner creates a runner over stdin and stdout.
func NewRunner() *Runner {
	return &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Prompt: "> ",
		Settle: PollSettle,
	}
}

// PollSettle waits until no reveal or transition runs, or ctx ends.
func PollSettle(ctx context.Context, s *session.Session) {
	t := time.NewTicker(SettlePoll)
	defer t.Stop()
	for s.Revealing() || s.Transitioning() {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Run renders the session and executes commands until quit, EOF or ctx ends.
func (r *Runner) Run(ctx context.Context, s *session.Session) error {
	if r.Input == nil {
		r.Input = os.Stdin
	}
	if r.Output == nil {
		r.Output = os.Stdout
	}
	if r.Settle == nil {
		r.Settle = PollSettle
	}

	if err := s.Render(ctx); err != nil {
		return err
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.Input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if r.Prompt != "" {
			fmt.Fprint(r.Output, r.Prompt)
		}
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case line = <-lines:
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		quit, err := r.exec(ctx, s, line)
		if quit {
			fmt.Fprintln(r.Output, "Bye!")
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
			continue
		}
		r.Settle(ctx, s)
	}
}

func (r *Runner) exec(ctx context.Context, s *session.Session, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "q", "quit", "exit":
		return true, nil
	case "d", "decide":
		_, err := s.Decide(ctx)
		return false, err
	case "r", "replay":
		_, err := s.Replay(ctx)
		return false, err
	case "b", "back":
		return false, s.Back(ctx)
	case "h", "home":
		return false, s.Home(ctx)
	case "j", "jump":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("jump needs a breadcrumb number")
		}
		return false, s.JumpTo(ctx, n-1)
	case "p", "pick":
		if arg == "" {
			return false, fmt.Errorf("pick needs an item id")
		}
		_, err := s.Pick(ctx, arg)
		return false, err
	}

	n, err := strconv.Atoi(cmd)
	if err != nil {
		return false, fmt.Errorf("unknown command %q", cmd)
	}
	return false, r.openTile(ctx, s, n)
}

var errNoTile = errors.New("no such tile")

func (r *Runner) openTile(ctx context.Context, s *session.Session, n int) error {
	view, err := s.View(ctx)
	if err != nil {
		return err
	}
	if n < 1 || n > len(view.Tiles) {
		return errNoTile
	}
	tile := view.Tiles[n-1]
	switch tile.Kind {
	case domain.TileCategory:
		return s.SelectCategory(ctx, tile.ID)
	case domain.TileNode:
		return s.Open(ctx, tile.ID)
	default:
		_, err := s.Pick(ctx, tile.ID)
		return err
	}
}
