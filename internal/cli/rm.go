package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a conversation",
		Run:   runRm,
	}

	cmd.Flags().String("session", "", "Session ID or prefix (required)")
	cmd.Flags().Bool("hard", false, "Permanent delete (irreversible)")

	cmd.MarkFlagRequired("session")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("session")
	hard, _ := cmd.Flags().GetBool("hard")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	err = s.Rm(cmd.Context(), store.RmParams{
		ID:   id,
		Hard: hard,
	})
	if err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"session":%q,"hard":%t}`+"\n", id, hard)
}
