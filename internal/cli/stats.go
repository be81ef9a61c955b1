package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "text" {
		printStats(cmd.OutOrStdout(), stats)
		return
	}
	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func printStats(out io.Writer, st *store.Stats) {
	fmt.Fprintf(out, "database: %s (%s)\n", st.DBPath, humanize.Bytes(uint64(st.DBSizeBytes)))
	fmt.Fprintf(out, "sessions: %s active, %s total\n",
		humanize.Comma(int64(st.ActiveSessions)), humanize.Comma(int64(st.TotalSessions)))
	fmt.Fprintf(out, "turns:    %s\n", humanize.Comma(int64(st.TotalTurns)))
	if t, err := time.Parse(time.RFC3339, st.LastActive); err == nil {
		fmt.Fprintf(out, "last active %s\n", humanize.Time(t))
	}
	for _, sc := range st.Scripts {
		fmt.Fprintf(out, "  %-10s %s sessions, %s turns\n",
			sc.Script, humanize.Comma(int64(sc.Sessions)), humanize.Comma(int64(sc.Turns)))
	}
}
