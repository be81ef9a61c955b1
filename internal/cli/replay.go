package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/eliza/internal/eliza"
	"github.com/rcliao/eliza/internal/model"
	"github.com/rcliao/eliza/internal/script"
)

func init() {
	cmd := &cobra.Command{
		Use:   "replay FILE...",
		Short: "Replay scripted conversations",
		Long: `Run each file as a conversation of its own, one input per line. Blank lines
and lines starting with # are skipped. Files are replayed in parallel and
printed in argument order. Nothing is stored.`,
		Args: cobra.MinimumNArgs(1),
		Run:  runReplay,
	}

	RootCmd.AddCommand(cmd)
}

// replayResult is the conversation produced by one input file.
type replayResult struct {
	File     string       `json:"file"`
	Greeting string       `json:"greeting"`
	Turns    []model.Turn `json:"turns"`
}

func runReplay(cmd *cobra.Command, args []string) {
	sc, _, err := loadScript(cfg.Script)
	if err != nil {
		exitErr("load script", err)
	}

	results, err := replayAll(cmd.Context(), sc, args)
	if err != nil {
		exitErr("replay", err)
	}

	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "== %s\n", r.File)
			printTranscript(out, model.Transcript{Session: model.Session{Greeting: r.Greeting}, Turns: r.Turns})
		}
		return
	}
	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Fprintln(out, string(b))
}

// replayAll replays every file in its own session. All sessions share sc.
func replayAll(ctx context.Context, sc *script.Script, files []string) ([]replayResult, error) {
	results := make([]replayResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lines, err := readInputs(f)
			if err != nil {
				return err
			}
			log := logger.Named("replay").With(zap.String("file", f))
			e := eliza.New(sc, eliza.WithLogger(log))
			r := replayResult{File: f, Greeting: e.Greeting()}
			for j, line := range lines {
				r.Turns = append(r.Turns, model.Turn{Seq: j + 1, Input: line, Reply: e.Response(line)})
			}
			log.Debug("replayed", zap.Int("turns", len(r.Turns)))
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readInputs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scanInputs(f)
}

func scanInputs(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
