package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	turnblock "github.com/flexigpt/turnblock-go"
	"github.com/flexigpt/turnblock-go/internal/dispatch"
	"github.com/flexigpt/turnblock-go/internal/quiz"
	"github.com/flexigpt/turnblock-go/internal/rpg"
)

var errInputClosed = errors.New("input closed before the transcript ended")

func newPlayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play <transcript.md>",
		Short: "Play the quiz and rpg blocks of a markdown transcript",
		Long: `Play reads a markdown transcript, runs its quizinit, quiz, rpginit and rpg
fenced blocks in order, and asks for each answer on stdin. The line a model
would receive for each block is printed after it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
			if err != nil {
				return err
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			return play(cmd.Context(), src, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
		},
	}
}

// play runs every handled block of src against a fresh session. Answers are
// read from in, one per line.
func play(ctx context.Context, src []byte, in io.Reader, out io.Writer, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := dispatch.New(logger)
	defer loop.Close()

	rt, err := turnblock.New(turnblock.WithLogger(logger), turnblock.WithDispatcher(loop))
	if err != nil {
		return err
	}
	defer rt.Close()

	inputDone := make(chan struct{})
	var eofOnce sync.Once
	pres := newTerminalPresenter(ctx, out, readLines(ctx, in), func() {
		eofOnce.Do(func() {
			close(inputDone)
			cancel()
		})
	})
	sid, err := rt.NewSession(ctx, pres)
	if err != nil {
		return err
	}

	handled := 0
	for _, b := range extractBlocks(src) {
		if !rt.Handles(b.Lang) {
			logger.Debug("block skipped", "lang", b.Lang, "line", b.Line)
			continue
		}
		res, err := rt.HandleBlock(ctx, sid, b.Lang, b.Body)
		if err != nil {
			select {
			case <-inputDone:
				return errInputClosed
			default:
			}
			return fmt.Errorf("%s block at line %d: %w", b.Lang, b.Line, err)
		}
		handled++

		// Print after everything the block posted has been drawn.
		if err := loop.Do(ctx, func() { pres.printf("%s\n", summaryStyle.Render("-> "+res)) }); err != nil {
			return err
		}
	}

	if handled == 0 {
		pres.printf("no quiz or rpg blocks found\n")
		return nil
	}

	st, err := rt.State(ctx, sid)
	if err != nil {
		return err
	}
	if st.Quiz.Total > 0 {
		pres.printf("%s\n", quiz.ScoreLine(st.Quiz))
	}
	if st.RPG.Ended {
		pres.printf("%s: %s\n", st.RPG.Title, st.RPG.Outcome)
	} else if len(st.RPG.Stats) > 0 || len(st.RPG.Inventory) > 0 {
		pres.printf("%s\n", rpg.Summary(st.RPG))
	}
	return nil
}

// readLines streams the lines of r. The channel is closed at EOF.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
