package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/brd.go/pkg/board/b101e1ngu"
	"github.com/robotalks/brd.go/pkg/bus"
	"github.com/robotalks/brd.go/pkg/bus/udp"
	fx "github.com/robotalks/brd.go/pkg/framework"
	"github.com/robotalks/brd.go/pkg/sim"
	"github.com/robotalks/brd.go/pkg/stream"
)

var (
	host       = "127.0.0.1"
	busPort    = udp.DefaultPort
	streamPort = stream.DefaultPort
	dropSpells int
	badSpells  int
	tick       time.Duration
)

func init() {
	flag.StringVar(&host, "host", host, "Listen host.")
	flag.IntVar(&busPort, "bus-port", busPort, "Bus port.")
	flag.IntVar(&streamPort, "stream-port", streamPort, "Observation stream port.")
	flag.IntVar(&dropSpells, "drop-spells", dropSpells, "Number of first handshakes left unanswered.")
	flag.IntVar(&badSpells, "bad-spells", badSpells, "Number of handshakes answered with a wrong spell.")
	flag.DurationVar(&tick, "tick", tick, "Interval of ticks sent to the stream after start, 0 disables.")
}

func send(output chan<- []byte, msg string) {
	select {
	case output <- []byte(msg):
	default:
		glog.Warningf("output full, drop %q", msg)
	}
}

func main() {
	flag.Parse()

	mem := bus.NewMemory()
	b101e1ngu.SeedPowerOn(mem)
	output := make(chan []byte, 64)
	started := make(chan struct{}, 1)
	s := sim.New(mem, output)
	s.Board.DropSpells, s.Board.BadSpells = dropSpells, badSpells
	s.Board.OnWrite = func(addr bus.Address, value uint32) {
		switch addr {
		case bus.At(b101e1ngu.HostBus, b101e1ngu.HMODE):
			if value&b101e1ngu.HModeReset != 0 {
				b101e1ngu.SeedPowerOn(mem)
			}
		case bus.At(b101e1ngu.ProcBus, b101e1ngu.VIRPT):
			send(output, "program started\n")
			select {
			case started <- struct{}{}:
			default:
			}
		}
	}
	if err := s.Listen(
		net.JoinHostPort(host, strconv.Itoa(busPort)),
		net.JoinHostPort(host, strconv.Itoa(streamPort))); err != nil {
		log.Fatalln(err)
	}
	glog.Infof("simulating %s on %s, stream on %s", b101e1ngu.Name, s.Board.Addr(), s.Stream.Addr())

	r := fx.NewRunner().HandleSignals().Go(s)
	if tick > 0 {
		r.Go(fx.NamedRun("ticker", fx.RunnableFunc(func(ctx context.Context) error {
			select {
			case <-started:
			case <-ctx.Done():
				return ctx.Err()
			}
			ticker := time.NewTicker(tick)
			defer ticker.Stop()
			for n := 1; ; n++ {
				select {
				case <-ticker.C:
					send(output, fmt.Sprintf("tick %d\n", n))
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})))
	}
	if err := r.Wait(); err != nil {
		log.Fatalln(err)
	}
}
