package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sitegrid/sitegrid/cmd/cli/commands"
)

func main() {
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
