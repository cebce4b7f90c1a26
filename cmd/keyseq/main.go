package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/tkw1536/keyseq"
	"github.com/tkw1536/keyseq/logging"
	"github.com/tkw1536/keyseq/service"
)

func main() {
	if err := config.Main(globalContext); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

//
// ctrl+c
//

var globalContext context.Context

func init() {
	var cancel context.CancelFunc
	globalContext, cancel = context.WithCancel(context.Background())

	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, os.Interrupt)

	go func() {
		<-cancelChan
		cancel()
	}()
}

//
// command line flags
//

var config = service.DefaultConfig()

func init() {
	var legalFlag bool = false
	flag.BoolVar(&legalFlag, "legal", legalFlag, "Display legal notices and exit")
	defer func() {
		if legalFlag {
			fmt.Print(keyseq.LegalText())
			os.Exit(0)
		}
	}()

	defer func() {
		logger := config.Logger(os.Stderr)
		logging.Init(&logger)
	}()

	config.AddFlagsTo(nil)
	flag.Parse()
}
