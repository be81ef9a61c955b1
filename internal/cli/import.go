package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import conversations from JSON",
		Long:  "Import conversations from JSON (stdin or file). Expects the format produced by export.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	var transcripts []model.Transcript
	if err := json.Unmarshal(data, &transcripts); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), transcripts)
	if err != nil {
		exitErr("import", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d,"skipped":%d}`+"\n", imported, len(transcripts)-imported)
}
