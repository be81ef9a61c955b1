package eliza

import (
	"strconv"
	"strings"
)

// errorMarker replaces a back-reference to a fragment that does not exist.
const errorMarker = "THINGY"

// Reassemble builds a word list from a reassembly template. A number k in
// the template is replaced by the words of fragments[k-1]; anything else
// is copied as is.
func Reassemble(template, fragments []string) []string {
	out := make([]string, 0, len(template))
	for _, t := range template {
		if !isIndex(t) {
			out = append(out, t)
			continue
		}
		k, err := strconv.Atoi(t)
		if err != nil || k < 1 || k > len(fragments) {
			out = append(out, errorMarker)
			continue
		}
		out = append(out, strings.Fields(fragments[k-1])...)
	}
	return out
}

func isIndex(t string) bool {
	return t != "" && strings.Trim(t, "0123456789") == ""
}
