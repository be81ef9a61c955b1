package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/eliza/internal/script"
)

func init() {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a script",
		Long:  "Load a script and summarize it. Without a file the configured script is checked.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runCheck,
	}

	RootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	name := cfg.Script
	if len(args) == 1 {
		name = args[0]
	}

	sum, err := checkScript(name)
	if err != nil {
		exitErr("check", err)
	}

	if formatFlag == "text" {
		printSummary(cmd.OutOrStdout(), sum)
		return
	}
	b, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func checkScript(name string) (script.Summary, error) {
	sc, _, err := loadScript(name)
	if err != nil {
		return script.Summary{}, err
	}
	return sc.Summary(), nil
}

func printSummary(out io.Writer, sum script.Summary) {
	fmt.Fprintf(out, "%s: %d rules, memory on %s\n", sum.Name, sum.Rules, sum.MemoryKeyword)
	fmt.Fprintf(out, "greeting: %s\n", sum.Greeting)
	fmt.Fprintf(out, "keywords: %s\n", strings.Join(sum.Keywords, " "))

	kinds := make([]string, 0, len(sum.Kinds))
	for k := range sum.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(out, "  %-14s %d\n", k, sum.Kinds[k])
	}

	tags := make([]string, 0, len(sum.Tags))
	for t := range sum.Tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	for _, t := range tags {
		fmt.Fprintf(out, "  /%s: %s\n", t, strings.Join(sum.Tags[t], " "))
	}
	if len(sum.Links) > 0 {
		fmt.Fprintf(out, "warning: links to missing keywords: %s\n", strings.Join(sum.Links, " "))
	}
}
