package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List conversations",
		Run:   runSessions,
	}

	cmd.Flags().String("script", "", "Filter by script (doctor or a file path)")
	cmd.Flags().String("since", "", "Only sessions active within this period (e.g. 7d, 24h)")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output session IDs")

	RootCmd.AddCommand(cmd)
}

func runSessions(cmd *cobra.Command, args []string) {
	scr, _ := cmd.Flags().GetString("script")
	since, _ := cmd.Flags().GetString("since")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sessions, err := s.List(cmd.Context(), store.ListParams{
		Script: scr,
		Since:  since,
		Limit:  limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	out := cmd.OutOrStdout()
	if idsOnly {
		for _, sess := range sessions {
			fmt.Fprintln(out, sess.ID)
		}
		return
	}
	if formatFlag == "text" {
		for _, sess := range sessions {
			fmt.Fprintf(out, "%s  %-8s %4d turns  %s\n",
				sess.ID, sess.Script, sess.Turns, humanize.Time(sess.UpdatedAt))
		}
		return
	}

	b, _ := json.MarshalIndent(sessions, "", "  ")
	fmt.Fprintln(out, string(b))
}
