package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"github.com/weegigs/wee-counter-go/counter"
	"github.com/weegigs/wee-counter-go/we"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [set-diff N | increase | decrease | <type>]...\n", os.Args[0])
	flag.PrintDefaults()
}

func run(ctx context.Context, args []string, number int, diff int) error {
	actions, err := parseActions(args)
	if err != nil {
		return err
	}

	store := counter.NewStore(we.WithState(counter.State{Number: number, Diff: diff}))
	unsubscribe := store.Subscribe(func(state counter.State) {
		log.WithFields(log.Fields{"number": state.Number, "diff": state.Diff}).Info("state changed")
	})
	defer unsubscribe()

	for _, action := range actions {
		if _, err := store.Dispatch(ctx, action); err != nil {
			return err
		}
	}

	return json.NewEncoder(os.Stdout).Encode(store.State())
}

func main() {
	number := flag.Int("number", 0, "starting number")
	diff := flag.Int("diff", 1, "starting diff")
	verbose := flag.Bool("v", false, "log every state change")
	flag.Usage = usage
	flag.Parse()

	log.SetOutput(os.Stderr)
	if !*verbose {
		log.SetLevel(log.WarnLevel)
	}

	if err := run(context.Background(), flag.Args(), *number, *diff); err != nil {
		log.Fatal(err)
	}
}
