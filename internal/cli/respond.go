package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "respond [text]",
		Short: "Answer one line",
		Long: `Answer one line of input within a stored session. Text can be a positional
arg or piped via stdin. Without --session a new session is started.`,
		Run: runRespond,
	}

	cmd.Flags().String("session", "", "Session ID or prefix")

	RootCmd.AddCommand(cmd)
}

func runRespond(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("session")

	input, err := readInput(args, os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := openConversation(cmd.Context(), s, id, id == "")
	if err != nil {
		exitErr("open session", err)
	}
	turn, err := c.reply(cmd.Context(), input)
	if err != nil {
		exitErr("respond", err)
	}

	if formatFlag == "text" {
		printWrapped(cmd.OutOrStdout(), turn.Reply, wrapOptions())
		return
	}
	b, _ := json.Marshal(turn)
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

// readInput returns the positional args joined, or else whatever is piped
// into stdin. A terminal or an unusable stdin yields empty input.
func readInput(args []string, stdin *os.File) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	stat, err := stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
