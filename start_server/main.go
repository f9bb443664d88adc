// Command start_server serves the directory containing it on
// http://localhost:8000 so the ROS Bag Map Generator page can load local files.
//
// Usage:
//
//	start_server [-dir path] [-host host] [-port 8000] [-log=true] [-metric=true]
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mywrap/log"
	"github.com/mywrap/staticsvr"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	conf, err := staticsvr.ParseFlags(args, ".env", os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		log.Printf("error ParseFlags: %v", err)
		return 2
	}
	s, err := staticsvr.NewServerWithConf(conf)
	if err != nil {
		log.Printf("error NewServer: %v", err)
		return 1
	}
	if err := s.Listen(); err != nil {
		if errors.Is(err, staticsvr.ErrPortInUse) {
			log.Printf("port %v is already in use by another process, "+
				"stop it or choose another port with -port", conf.Port)
			return 1
		}
		log.Printf("error Listen: %v", err)
		return 1
	}
	s.WriteBanner(color.Output)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := s.Serve(ctx); err != nil {
		log.Printf("error Serve: %v", err)
		return 1
	}
	staticsvr.WriteFarewell(color.Output)
	return 0
}
