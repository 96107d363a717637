package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "regrag", Short: "Question answering over FIA F1 regulations"}

	root.AddCommand(serveCMD(), migrateCMD(), indexCMD(), askCMD(), searchCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
