// meshtool is a CLI utility for inspecting and maintaining saved mesh data.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/cache"
	"github.com/Faultbox/meshbake/internal/config"
	"github.com/Faultbox/meshbake/internal/generator"
	"github.com/Faultbox/meshbake/internal/logger"
	"github.com/Faultbox/meshbake/pkg/meshdata"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	g, err := generator.Open(cfg)
	if err != nil {
		logger.Error("failed to open mesh cache", zap.Error(err))
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	command, rest := args[0], args[1:]
	switch command {
	case "info", "ls":
		err = cmdInfo(g, rest)
	case "bake":
		err = cmdBake(g, rest)
	case "dump":
		err = cmdDump(g, rest)
	case "merge":
		err = cmdMerge(g, rest)
	case "convert":
		err = cmdConvert(rest)
	case "rm":
		err = cmdRemove(g, rest)
	case "clear":
		err = cmdClear(g)
	case "materials":
		err = cmdMaterials(g)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - saved mesh data utility

Usage:
  meshtool [flags] <command> [options]

Flags:
  -config <file>      Config file (default ./meshbake.yaml)
  -cache-root <dir>   Directory holding saved mesh data
  -format <fmt>       text or binary
  -materials <file>   Material table (.yaml or .toml)
  -debug              Enable debug logging

Commands:
  info                          List saved templates with section counts
  bake [-force] <scene.yaml>    Build a template from placed glTF meshes
  dump [-v] <template|file>     Show sections of a template or file
  merge <out> <in>...           Merge inputs by material into one template or file
  convert <in> <out>            Convert between text (.txt) and binary (.emsh)
  rm <template>...              Delete saved templates
  clear                         Delete the whole cache directory
  materials                     List material table rows

Examples:
  meshtool info
  meshtool bake -force scenes/house_a.yaml
  meshtool dump -v House_A
  meshtool merge House_Full House_A House_B
  meshtool convert House_A.txt House_A.emsh
  meshtool -cache-root /tmp/meshes clear`)
}

func cmdInfo(g *generator.Generator, args []string) error {
	store := g.Store()
	names, err := store.List()
	if err != nil {
		return err
	}

	fmt.Printf("Root:      %s\n", store.Root)
	fmt.Printf("Format:    %s\n", store.Format)
	fmt.Printf("Templates: %d\n", len(names))
	if len(names) == 0 {
		return nil
	}
	fmt.Println()

	for _, name := range names {
		sections, err := store.Read(name)
		if err != nil {
			fmt.Printf("  %-32s (unreadable: %v)\n", name, err)
			continue
		}
		verts, tris := totals(sections)
		fmt.Printf("  %-32s %3d sections %8d verts %8d tris\n", name, len(sections), verts, tris)
	}
	return nil
}

func cmdBake(g *generator.Generator, args []string) error {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	force := fs.Bool("force", false, "Rebuild even if cached data exists")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: meshtool bake [-force] <scene.yaml>")
	}

	scene, err := generator.LoadScene(fs.Arg(0))
	if err != nil {
		return err
	}
	req, err := scene.Request(*force)
	if err != nil {
		return err
	}

	p, res, err := g.Generate(req)
	if err != nil {
		return err
	}

	b := p.Bounds()
	fmt.Printf("Template: %s (pass %s)\n", res.Key, res.PassID)
	fmt.Printf("Source:   %s\n", res.Source)
	fmt.Printf("Sections: %d, materials %d\n", p.SectionCount(), len(p.Materials()))
	fmt.Printf("Bounds:   %v .. %v\n", b.Min, b.Max)
	if res.Source == cache.SourceMiss {
		fmt.Printf("Merged:   %d -> %d sections\n", res.Stats.Input, res.Stats.Output)
	}
	if res.WriteErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: data not saved: %v\n", res.WriteErr)
	}
	if res.TableErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: material table not saved: %v\n", res.TableErr)
	}
	return nil
}

func cmdDump(g *generator.Generator, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print vertex and index data")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: meshtool dump [-v] <template|file>")
	}

	sections, source, err := readInput(g, fs.Arg(0))
	if err != nil {
		return err
	}

	verts, tris := totals(sections)
	fmt.Printf("Source:   %s\n", source)
	fmt.Printf("Sections: %d (%d verts, %d tris)\n", len(sections), verts, tris)
	if err := meshdata.ValidateChain(sections); err != nil {
		fmt.Printf("Warning:  %v\n", err)
	}

	for i := range sections {
		s := &sections[i]
		fmt.Printf("\n[%d] %-24s bounds %s\n", i, s.Material, s.Bounds)
		if !*verbose {
			continue
		}
		for v := 0; v < s.VertexCount(); v++ {
			fmt.Printf("  v%-5d pos %v  n %v  t %v  uv %v\n", v,
				s.Vertices[v*3:v*3+3], s.Normals[v*3:v*3+3], s.Tangents[v*3:v*3+3], s.UVs[v*2:v*2+2])
		}
		for t := 0; t+2 < len(s.Indices); t += 3 {
			fmt.Printf("  tri %-5d %v\n", t/3, s.Indices[t:t+3])
		}
	}
	return nil
}

func cmdMerge(g *generator.Generator, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: meshtool merge <out> <in>...")
	}

	out := args[0]
	stats, err := mergeInputs(g, out, args[1:])
	if err != nil {
		return err
	}

	fmt.Printf("Merged %d sections into %d (%s)\n", stats.Input, stats.Output, out)
	return nil
}

// mergeInputs concatenates the sections of every input in order, merges them
// by material and writes the result to out.
func mergeInputs(g *generator.Generator, out string, inputs []string) (meshdata.MergeStats, error) {
	var all []meshdata.Section
	for _, in := range inputs {
		sections, _, err := readInput(g, in)
		if err != nil {
			return meshdata.MergeStats{}, err
		}
		all = append(all, sections...)
	}

	merged, stats := meshdata.Merge(all)
	if stats.Empty() {
		logger.Warn("merge on empty list", zap.Strings("inputs", inputs))
	}
	return stats, writeOutput(g, out, merged)
}

// writeOutput writes to a file when out looks like a path, otherwise to the
// store under template name out.
func writeOutput(g *generator.Generator, out string, sections []meshdata.Section) error {
	if isPath(out) {
		return meshdata.WriteFile(out, sections, formatForPath(out))
	}
	if err := g.Store().Write(out, sections); err != nil {
		return err
	}
	// Drop any stale in-memory copy.
	g.Cache().Delete(out)
	return nil
}

func cmdConvert(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: meshtool convert <in> <out>")
	}

	sections, err := meshdata.ReadFile(args[0])
	if err != nil {
		return err
	}
	format := formatForPath(args[1])
	if err := meshdata.WriteFile(args[1], sections, format); err != nil {
		return err
	}

	fmt.Printf("Converted: %s -> %s (%s, %d sections)\n", args[0], args[1], format, len(sections))
	return nil
}

func cmdRemove(g *generator.Generator, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: meshtool rm <template>...")
	}
	for _, name := range args {
		if !g.Store().Exists(name) {
			fmt.Fprintf(os.Stderr, "Not found: %s\n", name)
			continue
		}
		if err := g.Invalidate(name); err != nil {
			return err
		}
		fmt.Printf("Removed: %s\n", name)
	}
	return nil
}

func cmdClear(g *generator.Generator) error {
	if err := g.ClearAll(); err != nil {
		return err
	}
	fmt.Printf("Cleared: %s\n", g.Store().Root)
	return nil
}

func cmdMaterials(g *generator.Generator) error {
	rows := g.Table().Rows()
	fmt.Printf("Rows: %d\n", len(rows))
	for _, r := range rows {
		fmt.Printf("  %-24s %s\n", r.Name, r.Material)
	}
	return nil
}

// readInput loads sections from a file path, or from the store when arg is a template name.
func readInput(g *generator.Generator, arg string) ([]meshdata.Section, string, error) {
	if isFile(arg) {
		sections, err := meshdata.ReadFile(arg)
		return sections, arg, err
	}

	sections, err := g.Store().Read(arg)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("template not found: %s", arg)
	}
	path, _ := g.Store().Path(arg)
	return sections, path, err
}

func isFile(arg string) bool {
	if strings.ContainsAny(arg, `/\`) {
		return true
	}
	switch strings.ToLower(filepath.Ext(arg)) {
	case meshdata.FormatText.Ext(), meshdata.FormatBinary.Ext():
		_, err := os.Stat(arg)
		return err == nil
	}
	return false
}

// isPath reports whether an output argument names a file rather than a template.
func isPath(arg string) bool {
	if strings.ContainsAny(arg, `/\`) {
		return true
	}
	switch strings.ToLower(filepath.Ext(arg)) {
	case meshdata.FormatText.Ext(), meshdata.FormatBinary.Ext():
		return true
	}
	return false
}

func formatForPath(path string) meshdata.Format {
	if strings.EqualFold(filepath.Ext(path), meshdata.FormatBinary.Ext()) {
		return meshdata.FormatBinary
	}
	return meshdata.FormatText
}

func totals(sections []meshdata.Section) (verts, tris int) {
	for i := range sections {
		verts += sections[i].VertexCount()
		tris += sections[i].TriangleCount()
	}
	return verts, tris
}
