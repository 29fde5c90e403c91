package main

import (
	"flag"
	"log"

	fluid "github.com/bcgamma1/fluidDynamicsSandbox/fluid-solver"
	"github.com/bcgamma1/fluidDynamicsSandbox/terminal"
	"github.com/bcgamma1/fluidDynamicsSandbox/websocket"
)

func main() {
	var (
		mode     = flag.String("mode", "terminal", "front end to run: terminal or serve")
		addr     = flag.String("addr", "localhost:5000", "listen address in serve mode")
		root     = flag.String("root", ".", "static file root in serve mode")
		scenario = flag.String("scenario", "dam", "initial layout: empty, dam or waterfall")
	)
	flag.Parse()

	sim := fluid.New(fluid.DefaultConfig())
	if err := fluid.ApplyScenario(sim, *scenario); err != nil {
		log.Fatalln(err)
	}

	switch *mode {
	case "terminal":
		if err := terminal.New(sim).Run(); err != nil {
			log.Fatalln(err)
		}
	case "serve":
		srv := websocket.New(sim, websocket.Params{
			Address: *addr,
			Prefix:  "/",
			Root:    *root,
		})
		log.Fatalln(srv.ListenAndServe())
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}
