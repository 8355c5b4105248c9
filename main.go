// The viral client: a shared drawing board. Point it at a running
// viralserver with -addr, or let it find one on the local network.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/toanminhbui/viral/internal/board"
	"github.com/toanminhbui/viral/internal/remote"
	"github.com/toanminhbui/viral/internal/ui"
)

func main() {
	addr := flag.String("addr", "", "board server address (host:port); empty means discover via mDNS")
	name := flag.String("name", "", "participant name; empty asks on startup")
	poll := flag.Duration("poll", 10*time.Second, "interval between full reconciliations with the server")
	flag.Parse()

	server := *addr
	if server == "" {
		log.Println("no -addr given, browsing the local network for a board server")
		found, err := remote.Discover(3 * time.Second)
		if err != nil {
			log.Fatalf("could not find a board server: %v (start viralserver, or pass -addr)", err)
		}
		server = found
	}
	log.Printf("using board server at %s", server)

	ui.RunApp(ui.Config{
		Store:  board.NewStore(),
		Remote: remote.NewClient(server),
		Name:   *name,
		Poll:   *poll,
	})
}
