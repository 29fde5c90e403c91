// Package websocket exposes the simulation to browser clients: it serves a
// static root over HTTP, streams one JSON snapshot per tick on /ws and feeds
// incoming JSON events into the simulation at tick boundaries.
package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	fluid "github.com/bcgamma1/fluidDynamicsSandbox/fluid-solver"
)

// Params configures the HTTP side of the server.
type Params struct {
	Address  string // listen address, e.g. localhost:5000
	Prefix   string // URL prefix the static root is served under
	Root     string // static file root
	TickRate int    // simulation ticks (and snapshots) per second
}

// Event is one input message from a client. Op selects the operation; the
// remaining fields are read depending on it.
type Event struct {
	Op     string  `json:"op"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	HasPos bool    `json:"hasPos,omitempty"` // dropObject: X/Y are a drop point
	Name   string  `json:"name,omitempty"`
	Value  float64 `json:"value,omitempty"`
	ID     int     `json:"id,omitempty"`
	Shape  string  `json:"shape,omitempty"`
}

// apply runs the event against the simulation. It is only called from the
// tick loop, between steps.
func (e Event) apply(sim *fluid.Simulation) error {
	switch e.Op {
	case "addParticle":
		sim.AddParticle(e.X, e.Y)
		return nil
	case "setParameter":
		return sim.SetParameter(e.Name, e.Value)
	case "addBarrier":
		_, err := sim.AddBarrier(e.X, e.Y, e.X2, e.Y2)
		return err
	case "removeBarrier":
		sim.RemoveBarrier(e.ID)
		return nil
	case "dropObject":
		shape, err := fluid.ParseShape(e.Shape)
		if err != nil {
			return err
		}
		if e.HasPos {
			sim.DropObjectAt(shape, e.X, e.Y)
		} else {
			sim.DropObject(shape)
		}
		return nil
	case "reset":
		sim.Reset()
		return nil
	}
	return fmt.Errorf("websocket: unknown op %q", e.Op)
}

// A server application calls the Upgrade method from an HTTP request handler
// to initiate a connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server owns the simulation goroutine and the connected clients. All
// simulation access happens on the run loop; client readers only post events
// onto a channel.
type Server struct {
	sim    *fluid.Simulation
	params Params
	events chan Event

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// New wires a server around an existing simulation.
func New(sim *fluid.Simulation, p Params) *Server {
	if p.TickRate <= 0 {
		p.TickRate = 30
	}
	return &Server{
		sim:     sim,
		params:  p,
		events:  make(chan Event, 256),
		clients: make(map[*websocket.Conn]bool),
	}
}

// ListenAndServe starts the tick loop, then serves the static root and the
// /ws endpoint until the HTTP server fails.
func (s *Server) ListenAndServe() error {
	root, err := filepath.Abs(s.params.Root)
	if err != nil {
		return err
	}
	go s.run()

	mux := http.NewServeMux()
	mux.Handle(s.params.Prefix, http.StripPrefix(s.params.Prefix, http.FileServer(http.Dir(root))))
	mux.HandleFunc("/ws", s.wsHandler)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Print(r.RemoteAddr + " " + r.Method + " " + r.URL.String())
		mux.ServeHTTP(w, r)
	})

	log.Printf("serving %s as %s on %s", root, s.params.Prefix, s.params.Address)
	return http.ListenAndServe(s.params.Address, handler)
}

// wsHandler upgrades the HTTP connection and registers the client.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			log.Println(err)
		}
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	go s.readSocket(conn)
}

// readSocket listens for input events from one client until it disconnects.
func (s *Server) readSocket(conn *websocket.Conn) {
	defer s.drop(conn)
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			return
		}
		s.events <- ev
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// run is the tick loop: drain pending events, step the simulation by the
// elapsed wall time, broadcast the snapshot. Events apply only here, between
// steps, so clients can never mutate state mid-tick.
func (s *Server) run() {
	interval := time.Second / time.Duration(s.params.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for now := range ticker.C {
	drain:
		for {
			select {
			case ev := <-s.events:
				if err := ev.apply(s.sim); err != nil {
					log.Println(err)
				}
			default:
				break drain
			}
		}

		s.sim.Step(now.Sub(last).Seconds())
		last = now
		s.broadcast()
	}
}

func (s *Server) broadcast() {
	s.mu.Lock()
	if len(s.clients) == 0 {
		s.mu.Unlock()
		return
	}
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	msg, err := json.Marshal(s.sim.Snapshot())
	if err != nil {
		log.Println(err)
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Println(err)
			s.drop(conn)
		}
	}
}
