package main

import (
	"github.com/robotalks/tmon/pkg/cli/sh"
	"github.com/robotalks/tmon/pkg/config"

	_ "github.com/robotalks/tmon/pkg/cli/cmds/all"
)

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
