// Command ssg-server serves stored measure runs over HTTP.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/DyadicSolutions/StateSpaceGridLib/api"
	"github.com/DyadicSolutions/StateSpaceGridLib/internal/version"
	"github.com/DyadicSolutions/StateSpaceGridLib/store"
)

var (
	addr    = flag.String("addr", ":8080", "HTTP listen address")
	dbPath  = flag.String("db", "measures.db", "SQLite database of measure runs")
	showVer = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVer {
		fmt.Printf("ssg-server %s (%s)\n", version.Version, version.GitSHA)
		return
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	log.Printf("serving measure runs from %s on %s", *dbPath, *addr)
	if err := http.ListenAndServe(*addr, api.NewServer(st)); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
