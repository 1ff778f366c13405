package gen

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate documentation for tsquery",
	Long:  `Generate documentation for tsquery from its command definitions`,
}

func init() {
	RootCmd.AddCommand(ManPagesCmd)
}
