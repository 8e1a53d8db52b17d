/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line entry point for protoinfer. Builds the cobra command tree and
reports failures on stderr with a non-zero exit status.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/protoinfer/cmd/protoinfer/commands"
)

func main() {
	rootCmd := commands.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
