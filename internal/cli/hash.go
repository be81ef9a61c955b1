package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/eliza"
)

func init() {
	cmd := &cobra.Command{
		Use:   "hash WORD",
		Short: "Show how a word hashes",
		Long:  "Print the BCD chunks of a word, the packed value of its last chunk and its hash.",
		Args:  cobra.ExactArgs(1),
		Run:   runHash,
	}

	cmd.Flags().IntP("bits", "n", 2, "Hash width in bits (1-15)")

	RootCmd.AddCommand(cmd)
}

type hashReport struct {
	Word   string   `json:"word"`
	Chunks []string `json:"chunks"`
	Packed string   `json:"packed"` // octal, two digits per character
	Bits   int      `json:"bits"`
	Hash   int      `json:"hash"`
}

func hashWord(word string, bits int) (hashReport, error) {
	if bits < 1 || bits > 15 {
		return hashReport{}, fmt.Errorf("bits must be between 1 and 15, got %d", bits)
	}
	word = strings.ToUpper(word)
	packed := eliza.LastChunk(word)
	return hashReport{
		Word:   word,
		Chunks: eliza.Chunks(word),
		Packed: fmt.Sprintf("%012o", packed),
		Bits:   bits,
		Hash:   eliza.Hash(packed, bits),
	}, nil
}

func runHash(cmd *cobra.Command, args []string) {
	bits, _ := cmd.Flags().GetInt("bits")

	r, err := hashWord(args[0], bits)
	if err != nil {
		exitErr("hash", err)
	}

	if formatFlag == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", r.Word, r.Packed, r.Hash)
		return
	}
	b, _ := json.MarshalIndent(r, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
