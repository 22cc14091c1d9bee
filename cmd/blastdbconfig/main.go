package main

import (
	"fmt"
	"os"

	"github.com/FlyBase/blast-db-configuration/cmd/blastdbconfig/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
