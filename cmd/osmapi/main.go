package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	osm "github.com/omniscale/go-osm"

	osmapi "github.com/omniscale/go-osmapi"
	"github.com/omniscale/go-osmapi/api"
	"github.com/omniscale/go-osmapi/config"
	"github.com/omniscale/go-osmapi/element"
	"github.com/omniscale/go-osmapi/logging"
	"github.com/omniscale/go-osmapi/overpass"
)

var log = logging.NewLogger("")

func printCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Println("Available commands:")
	fmt.Println("\tchangeset")
	fmt.Println("\telement")
	fmt.Println("\tquery")
	fmt.Println("\tversion")
}

func main() {
	if len(os.Args) <= 1 {
		printCmds()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "changeset":
		fetchChangeset(os.Args[2:])
	case "element":
		fetchElement(os.Args[2:])
	case "query":
		queryOverpass(os.Args[2:])
	case "version":
		fmt.Println(osmapi.Version)
		os.Exit(0)
	default:
		printCmds()
		log.Fatalf("invalid command: '%s'", os.Args[1])
	}
	os.Exit(0)
}

func loadConfig(configFile, baseURL string, debug bool) *config.Config {
	if debug {
		logging.SetMinLevel(logging.DEBUG)
	}
	var conf *config.Config
	var err error
	if configFile != "" {
		conf, err = config.Load(configFile)
	} else {
		conf, err = config.New(baseURL)
	}
	if err != nil {
		log.Fatalf("config error: %s", err)
	}
	return conf
}

func fetchChangeset(args []string) {
	flags := flag.NewFlagSet("changeset", flag.ExitOnError)
	configFile := flags.String("config", "", "configuration file")
	baseURL := flags.String("url", "https://api.openstreetmap.org", "editing API URL")
	debug := flags.Bool("debug", false, "enable debug logging")
	flags.Parse(args)
	if flags.NArg() != 1 {
		log.Fatalf("missing changeset ID")
	}
	id, err := strconv.ParseInt(flags.Arg(0), 10, 64)
	if err != nil {
		log.Fatalf("invalid changeset ID '%s'", flags.Arg(0))
	}

	conf := loadConfig(*configFile, *baseURL, *debug)
	client := api.NewClient(conf)
	cs, err := client.Fetch(context.Background(), id)
	if err != nil {
		log.Fatalf("fetching changeset %d: %s", id, err)
	}

	state := "open"
	if !cs.Open {
		state = "closed"
	}
	fmt.Printf("changeset %d (%s) by %s (%d), %d changes\n",
		cs.ID, state, cs.UserName, cs.UserID, cs.NumChanges)
	for k, v := range cs.Tags {
		fmt.Printf("\t%s=%s\n", k, v)
	}
}

func fetchElement(args []string) {
	flags := flag.NewFlagSet("element", flag.ExitOnError)
	configFile := flags.String("config", "", "configuration file")
	baseURL := flags.String("url", "https://api.openstreetmap.org", "editing API URL")
	debug := flags.Bool("debug", false, "enable debug logging")
	flags.Parse(args)
	if flags.NArg() != 2 {
		log.Fatalf("expected element type and ID")
	}
	var t osm.MemberType
	switch flags.Arg(0) {
	case "node":
		t = osm.NodeMember
	case "way":
		t = osm.WayMember
	case "relation":
		t = osm.RelationMember
	default:
		log.Fatalf("invalid element type '%s', expected node, way or relation", flags.Arg(0))
	}
	id, err := strconv.ParseInt(flags.Arg(1), 10, 64)
	if err != nil {
		log.Fatalf("invalid element ID '%s'", flags.Arg(1))
	}

	conf := loadConfig(*configFile, *baseURL, *debug)
	client := api.NewClient(conf)
	el, err := client.FetchElement(context.Background(), element.Ref{Type: t, ID: id})
	if err != nil {
		log.Fatalf("fetching %s %d: %s", flags.Arg(0), id, err)
	}

	switch el := el.(type) {
	case *element.Node:
		fmt.Printf("node %d v%d at %v, %v\n",
			el.ID, el.Version, el.Position.Lat.Value(), el.Position.Long.Value())
		printTags(el.Tags)
	case *element.Way:
		fmt.Printf("way %d v%d with %d nodes\n", el.ID, el.Version, len(el.Refs))
		printTags(el.Tags)
	case *element.Relation:
		fmt.Printf("relation %d v%d with %d members\n", el.ID, el.Version, len(el.Members))
		printTags(el.Tags)
	}
}

func printTags(tags element.Tags) {
	for k, v := range tags {
		fmt.Printf("\t%s=%s\n", k, v)
	}
}

// queryOverpass reads an Overpass QL query from a file (or stdin for "-")
// and writes the raw response to stdout.
func queryOverpass(args []string) {
	flags := flag.NewFlagSet("query", flag.ExitOnError)
	configFile := flags.String("config", "", "configuration file")
	overpassURL := flags.String("url", "https://overpass-api.de/api/interpreter", "Overpass API URL")
	debug := flags.Bool("debug", false, "enable debug logging")
	flags.Parse(args)
	if flags.NArg() != 1 {
		log.Fatalf("missing query file (use - for stdin)")
	}

	var raw []byte
	var err error
	if flags.Arg(0) == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(flags.Arg(0))
	}
	if err != nil {
		log.Fatalf("reading query: %s", err)
	}

	conf := loadConfig(*configFile, "https://api.openstreetmap.org", *debug)
	if conf.Overpass.URL == "" {
		conf.Overpass.URL = *overpassURL
	}
	client, err := overpass.NewClient(conf)
	if err != nil {
		log.Fatalf("%s", err)
	}
	body, err := client.Query(context.Background(), string(raw))
	if err != nil {
		log.Fatalf("overpass query: %s", err)
	}
	os.Stdout.Write(body)
}
