package commands

import (
	"github.com/spf13/cobra"

	"github.com/FlyBase/blast-db-configuration/internal/ncbi/genomes"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the recognized RefSeq organism groups",
	Run: func(cmd *cobra.Command, args []string) {
		for _, g := range genomes.Groups() {
			cmd.Println(g)
		}
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}
