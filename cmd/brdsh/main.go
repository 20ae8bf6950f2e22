package main

import (
	"github.com/robotalks/brd.go/pkg/bus/udp"
	"github.com/robotalks/brd.go/pkg/cli/sh"

	_ "github.com/robotalks/brd.go/pkg/cli/cmds/board"
)

//go-build: CGO_ENABLED=0

func init() {
	udp.SetupFlags()
}

func main() {
	sh.Main()
}
