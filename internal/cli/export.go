package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export conversations as JSON",
		Long:  "Export conversations, with every turn and the state needed to resume them, as JSON.",
		Run:   runExport,
	}

	cmd.Flags().String("session", "", "Only export this session")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("session")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	transcripts, err := s.ExportAll(cmd.Context(), id)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(transcripts, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
