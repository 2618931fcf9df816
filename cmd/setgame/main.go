package main

import (
	"github.com/alecthomas/kong"
)

var version = "dev"

// Globals are the flags shared by every command
type Globals struct {
	Config   string `short:"c" default:"setgame.hcl" type:"path" help:"HCL config file (defaults are used when it does not exist)"`
	LogLevel string `help:"Override the configured log level (debug|info|warn|error)"`
	Seed     int64  `help:"Seed for deterministic shuffles (0 uses the config, then a random seed)"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`

	Play     PlayCmd     `cmd:"" default:"1" help:"Play a game in the terminal"`
	Simulate SimulateCmd `cmd:"" help:"Run automated games concurrently and report the results"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("setgame"),
		kong.Description("A real-time game of Set for keyboard and automated players"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
