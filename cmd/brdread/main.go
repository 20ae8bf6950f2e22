package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/robotalks/brd.go/pkg/env"
	fx "github.com/robotalks/brd.go/pkg/framework"
	"github.com/robotalks/brd.go/pkg/stream"
	"github.com/robotalks/brd.go/pkg/stream/mqtt"
)

func init() {
	stream.SetupFlags()
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] address\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

// terminalHint warns on w when board output goes straight to a terminal.
func terminalHint(w io.Writer, out *os.File) bool {
	if !term.IsTerminal(int(out.Fd())) {
		return false
	}
	fmt.Fprintln(w, "board output is written to this terminal, Ctrl-C to stop")
	return true
}

func main() {
	flag.Parse()
	conf := stream.NewConfig()
	if flag.NArg() > 0 {
		conf.Address = flag.Arg(0)
	}
	if conf.Address == "" {
		flag.Usage()
		os.Exit(0)
	}

	r := fx.NewRunner().HandleSignals()
	reader, err := conf.Dial(r.Context)
	if err != nil {
		log.Fatalln(err)
	}
	defer reader.Close()

	var out io.Writer = os.Stdout
	if conf.MQTTURL != "" {
		pub, err := mqtt.Connect(conf.MQTTURL, env.ClientID("brdread"))
		if err != nil {
			log.Fatalln(err)
		}
		defer pub.Close()
		out = io.MultiWriter(os.Stdout, pub)
	}

	terminalHint(os.Stderr, os.Stdout)
	r.Go(fx.NamedRun("forward", fx.RunnableFunc(func(ctx context.Context) error {
		return reader.Forward(ctx, out)
	})))
	if err = r.Wait(); err != nil {
		log.Fatalln(err)
	}
}
