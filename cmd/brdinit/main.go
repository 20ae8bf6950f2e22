package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/robotalks/brd.go/pkg/board/b101e1ngu"
	"github.com/robotalks/brd.go/pkg/bus/udp"
	fx "github.com/robotalks/brd.go/pkg/framework"
)

func init() {
	udp.SetupFlags()
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s address[:port] [dxepath dxeargs...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(0)
	}

	r := fx.NewRunner().HandleSignals()
	r.Go(fx.MustComplete(fx.NamedRun("brdinit", fx.RunnableFunc(func(ctx context.Context) error {
		brd, err := b101e1ngu.Dial(ctx, flag.Arg(0), udp.Default().Options()...)
		if err != nil {
			return err
		}
		defer brd.Close()
		flashBoot := flag.NArg() < 2
		if err = brd.Reset(ctx, flashBoot); err != nil {
			return err
		}
		if flashBoot {
			return nil
		}
		if err = brd.LoadFile(ctx, flag.Arg(1), flag.Args()[2:]); err != nil {
			return err
		}
		return brd.Start(ctx)
	}))))
	if err := r.Wait(); err != nil {
		log.Fatalln(err)
	}
}
