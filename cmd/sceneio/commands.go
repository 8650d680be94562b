package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"

	"mirgoscene/internal/app"
	"mirgoscene/internal/engine"
	"mirgoscene/internal/errs"
	"mirgoscene/internal/prefab"
	"mirgoscene/internal/serialize"
)

func newFlags(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func needFiles(fs *flag.FlagSet) error {
	if fs.NArg() == 0 {
		return fmt.Errorf("no files given")
	}
	return nil
}

// validateScene reports every component in data that would not load cleanly.
func validateScene(a *app.App, data []byte) (int, error) {
	doc, err := serialize.DecodeScene(data)
	if err != nil {
		return 0, err
	}
	var problems error
	for _, ed := range doc.Entities {
		for i, cd := range ed.Components {
			if _, err := a.Entities.DeserializeComponent(cd, nil); err != nil {
				problems = multierr.Append(problems, fmt.Errorf("entity %d component %d: %w", ed.ID, i, err))
			}
		}
	}
	return len(doc.Entities), problems
}

func runValidate(a *app.App, args []string, out io.Writer) error {
	fs := newFlags("validate", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := needFiles(fs); err != nil {
		return err
	}

	failed := 0
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return errs.IO("read scene", path, err)
		}
		n, err := validateScene(a, data)
		if err != nil {
			failed++
			for _, e := range multierr.Errors(err) {
				fmt.Fprintf(out, "%s: %v\n", path, e)
			}
			continue
		}
		fmt.Fprintf(out, "%s: ok, %d entities\n", path, n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files have problems", failed, fs.NArg())
	}
	return nil
}

func runFmt(a *app.App, args []string, out io.Writer) error {
	fs := newFlags("fmt", out)
	write := fs.Bool("w", false, "write result to the source file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := needFiles(fs); err != nil {
		return err
	}

	for _, path := range fs.Args() {
		scene := engine.NewScene("")
		if err := a.Scenes.LoadFromFile(scene, path); err != nil {
			return err
		}
		if *write {
			if err := a.Scenes.SaveToFile(scene, path); err != nil {
				return err
			}
			continue
		}
		data, err := a.Scenes.Serialize(scene)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", data)
	}
	return nil
}

func runUpgradePrefab(a *app.App, args []string, out io.Writer) error {
	fs := newFlags("upgrade-prefab", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := needFiles(fs); err != nil {
		return err
	}

	for _, path := range fs.Args() {
		p, err := a.Prefabs.LoadFromFile(path)
		if err != nil {
			return err
		}
		if err := a.Prefabs.SaveToFile(p, path); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s prefab %q now version %s\n", path, p.Type, p.Name, prefab.FileVersion)
	}
	return nil
}

func runInstantiate(a *app.App, args []string, out io.Writer) error {
	fs := newFlags("instantiate", out)
	guidFlag := fs.String("prefab", "", "GUID of the prefab to instantiate")
	output := fs.String("o", "", "output scene file (default: overwrite the input)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("want exactly one scene file")
	}
	guid, err := engine.ParseGUID(*guidFlag)
	if err != nil {
		return fmt.Errorf("bad -prefab %q: %w", *guidFlag, err)
	}
	if _, err := a.Library.Refresh(); err != nil {
		return err
	}
	p, ok := a.Library.GetPrefab(guid)
	if !ok {
		return errs.Lookup("instantiate", "prefab %s not in %s", guid, a.Library.Dir())
	}

	path := fs.Arg(0)
	scene := engine.NewScene("")
	if err := a.Scenes.LoadFromFile(scene, path); err != nil {
		return err
	}
	var root engine.Entity
	if p.Type == prefab.TypeScene {
		root, err = a.Instantiator.InstantiateScenePrefab(scene, guid)
	} else {
		root, err = a.Instantiator.InstantiateEntityPrefab(scene, guid)
	}
	if err != nil {
		return err
	}

	if *output == "" {
		*output = path
	}
	if err := a.Scenes.SaveToFile(scene, *output); err != nil {
		return err
	}
	fmt.Fprintf(out, "instantiated %q as entity %d in %s\n", p.Name, root.ID(), *output)
	return nil
}

func runPrefabs(a *app.App, args []string, out io.Writer) error {
	if _, err := a.Library.Refresh(); err != nil {
		return err
	}
	for _, p := range a.Library.Prefabs() {
		path, _ := a.Library.Path(p.GUID)
		fmt.Fprintf(out, "%-20s %-6s %-24s %s\n", p.GUID, p.Type, p.Name, path)
	}
	return nil
}

func runComponents(a *app.App, args []string, out io.Writer) error {
	for _, name := range a.Components.Names() {
		meta, _ := a.Components.Lookup(name)
		props := make([]string, 0, len(meta.Properties()))
		for _, p := range meta.Properties() {
			props = append(props, p.Name()+":"+p.Type().String())
		}
		fmt.Fprintf(out, "%s {%s}\n", name, strings.Join(props, ", "))
	}
	return nil
}
