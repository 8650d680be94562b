// Command sceneio checks, rewrites and edits scene and prefab files.
//
// Usage:
//
//	sceneio [-config file] <command> [flags] [args]
//
// Commands:
//
//	validate        load scene files and report problems
//	fmt             rewrite scene files in canonical form
//	upgrade-prefab  rewrite prefab files in the current version
//	instantiate     add a prefab instance to a scene
//	prefabs         list the prefab library
//	components      list registered component types
//	bench           time scene round trips, optionally under a profiler
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"mirgoscene/internal/app"
	"mirgoscene/internal/config"
	"mirgoscene/internal/injector"
)

type command struct {
	name  string
	usage string
	run   func(a *app.App, args []string, out io.Writer) error
}

var commands = []command{
	{"validate", "validate <scene.json>...", runValidate},
	{"fmt", "fmt [-w] <scene.json>...", runFmt},
	{"upgrade-prefab", "upgrade-prefab <file.prefab>...", runUpgradePrefab},
	{"instantiate", "instantiate -prefab <guid> [-o out.json] <scene.json>", runInstantiate},
	{"prefabs", "prefabs", runPrefabs},
	{"components", "components", runComponents},
	{"bench", "bench [-entities n] [-rounds n] [-profile cpu|mem]", runBench},
}

var configPath = flag.String("config", "", "YAML config file")

func main() {
	flag.Usage = usage
	flag.Parse()
	os.Exit(run(*configPath, flag.Args(), os.Stdout, os.Stderr))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sceneio [-config file] <command> [flags] [args]")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", c.usage)
	}
}

func run(cfgPath string, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		usage()
		return 2
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(errOut, "sceneio: unknown command %q\n", args[0])
		return 2
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(errOut, "sceneio: %v\n", err)
		return 1
	}
	a, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "sceneio: %v\n", err)
		return 1
	}
	defer a.Close()

	if err := cmd.run(a, args[1:], out); err != nil {
		fmt.Fprintf(errOut, "sceneio %s: %v\n", cmd.name, err)
		return 1
	}
	return 0
}
