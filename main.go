// GraphLeague answers League of Legends champion strategy questions.
//
// Questions are classified into one of three intents, resolved against a
// knowledge graph of champions, archetypes, mechanics and roles, and the
// graph facts are narrated back as the answer.
package main

import (
	"fmt"
	"os"

	"github.com/Benny93/graphleague-go/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
