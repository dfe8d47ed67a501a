package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockberries/vesting"
)

// CodeEntry is one row of the result code table.
type CodeEntry struct {
	Code int8   `json:"code"`
	Name string `json:"name"`
}

// NewCodesCommand creates the codes command.
func NewCodesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "Print the result code table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := codeTable()
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			w := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(w, "%3d  %s\n", e.Code, e.Name)
			}
			return nil
		},
	}
}

func codeTable() []CodeEntry {
	codes := vesting.Codes()
	entries := make([]CodeEntry, len(codes))
	for i, c := range codes {
		entries[i] = CodeEntry{Code: int8(c), Name: c.String()}
	}
	return entries
}
