package main

import (
	"os"

	"auction-service/utils"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		utils.Error("command failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
