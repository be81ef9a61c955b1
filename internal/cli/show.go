package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a conversation transcript",
		Run:   runShow,
	}

	cmd.Flags().String("session", "", "Session ID or prefix (required)")
	cmd.MarkFlagRequired("session")

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("session")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	transcripts, err := s.ExportAll(cmd.Context(), id)
	if err != nil {
		exitErr("show", err)
	}

	if formatFlag == "text" {
		printTranscript(cmd.OutOrStdout(), transcripts[0])
		return
	}
	b, _ := json.MarshalIndent(transcripts[0], "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

// printTranscript writes a conversation the way it looked on the
// teletype, user lines marked with "> " and their continuation lines
// indented to match.
func printTranscript(out io.Writer, tr model.Transcript) {
	opts := wrapOptions()
	in := opts
	in.Indent = "  "
	printWrapped(out, tr.Session.Greeting, opts)
	for _, t := range tr.Turns {
		printWrapped(out, "> "+t.Input, in)
		printWrapped(out, t.Reply, opts)
	}
}
