package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/wrap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Hold a conversation",
		Long: `Read lines from stdin and answer each one. Without --session the most
recent conversation with the current script is resumed.`,
		Args: cobra.NoArgs,
		Run:  runChat,
	}

	cmd.Flags().String("session", "", "Session ID or prefix to resume")
	cmd.Flags().Bool("new", false, "Start a new session")
	cmd.Flags().Bool("trace", false, "Show how each reply was built")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("session")
	fresh, _ := cmd.Flags().GetBool("new")
	trace, _ := cmd.Flags().GetBool("trace")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := openConversation(cmd.Context(), s, id, fresh)
	if err != nil {
		exitErr("open session", err)
	}
	opts := chatOptions{trace: trace}
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		opts.prompt = "> "
	}
	if err := chat(cmd.Context(), c, os.Stdin, cmd.OutOrStdout(), opts); err != nil {
		exitErr("chat", err)
	}
}

type chatOptions struct {
	trace  bool
	prompt string // printed before each read; empty when input is piped
}

// chat runs the read-reply loop until in is exhausted.
func chat(ctx context.Context, c *conversation, in io.Reader, out io.Writer, o chatOptions) error {
	opts := wrapOptions()
	if c.fresh {
		printWrapped(out, c.engine.Greeting(), opts)
	} else {
		fmt.Fprintf(out, "(session %s)\n", c.id)
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, o.prompt)
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		turn, err := c.reply(ctx, line)
		if err != nil {
			return err
		}
		if o.trace {
			for _, t := range c.engine.Trace() {
				fmt.Fprintf(out, "; %s\n", t)
			}
		}
		printWrapped(out, turn.Reply, opts)
	}
	return sc.Err()
}

func printWrapped(out io.Writer, text string, opts wrap.Options) {
	if s := wrap.String(text, opts); s != "" {
		fmt.Fprintln(out, s)
	}
}
