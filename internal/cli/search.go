package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search conversations",
		Long:  "Search what was said and what ELIZA replied for matching text.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("session", "", "Only search this session")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("session")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		SessionID: id,
		Query:     query,
		Limit:     limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	out := cmd.OutOrStdout()
	if formatFlag == "text" {
		for _, r := range results {
			fmt.Fprintf(out, "%s #%d\n> %s\n%s\n\n", r.SessionID, r.Seq, r.Input, r.Reply)
		}
		return
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "[]")
		return
	}
	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Fprintln(out, string(b))
}
