// Package cmd provides CLI command implementations for GraphLeague.
package cmd

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Globals are the flags shared by every command. Set flags override the
// environment and the .env file.
type Globals struct {
	EnvFile  string `name:"env-file" help:"Read settings from this file instead of .env" type:"path"`
	Backend  string `help:"Graph store backend (memory, badger, neo4j)"`
	Data     string `help:"Champion data file or directory" type:"path"`
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error)"`
}

// Streams are the standard streams commands read from and write to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// CLI is the root Kong command structure.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version information"`

	// Commands
	Load      LoadCmd      `cmd:"" help:"Load champion data into the graph store"`
	Ask       AskCmd       `cmd:"" help:"Answer a strategy question"`
	Classify  ClassifyCmd  `cmd:"" help:"Show the intent a question is routed to"`
	Counter   CounterCmd   `cmd:"" help:"Rank counter picks against an enemy champion"`
	Mechanic  MechanicCmd  `cmd:"" help:"List champions that have a mechanic"`
	Archetype ArchetypeCmd `cmd:"" help:"List champions that counter an archetype"`
	Vocab     VocabCmd     `cmd:"" help:"Print the roles, mechanics and archetypes"`
	Chat      ChatCmd      `cmd:"" help:"Interactive question loop"`
	Serve     ServeCmd     `cmd:"" help:"Start MCP server (stdio transport) with optional watch mode"`
	HTTP      HTTPCmd      `cmd:"" name:"http" help:"Start the HTTP API"`
	Status    StatusCmd    `cmd:"" help:"Show what the graph store holds"`
	Clean     CleanCmd     `cmd:"" help:"Delete the local badger store"`
	Setup     SetupCmd     `cmd:"" help:"Configure MCP for Claude Code / Cursor / Qwen"`

	streams *Streams `kong:"-"`
}

// NewCLI creates a new CLI instance bound to the process streams.
func NewCLI() *CLI {
	return newCLI(os.Stdin, os.Stdout, os.Stderr)
}

func newCLI(in io.Reader, out, errOut io.Writer) *CLI {
	return &CLI{streams: &Streams{In: in, Out: out, Err: errOut}}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	parser, err := kong.New(c,
		kong.Name("graphleague"),
		kong.Description("League of Legends champion strategy from a knowledge graph"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
		kong.Writers(c.streams.Out, c.streams.Err),
	)
	if err != nil {
		return err
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	return kongCtx.Run(&c.Globals, c.streams)
}
