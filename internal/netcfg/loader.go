package netcfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/propdag/internal/ctxlog"
)

// Loader parses .hcl graph definition files.
type Loader struct{}

// NewLoader creates a new HCL graph definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes the top-level blocks of any definition file.
type fileRoot struct {
	Graphs []*graphBlock `hcl:"graph,block"`
	Remain hcl.Body      `hcl:",remain"`
}

type graphBlock struct {
	Name     string       `hcl:"name,label"`
	Strategy string       `hcl:"strategy,optional"`
	Mode     string       `hcl:"mode,optional"`
	Evict    bool         `hcl:"evict,optional"`
	Nodes    []*nodeBlock `hcl:"node,block"`
}

type nodeBlock struct {
	Name   string   `hcl:"name,label"`
	Op     string   `hcl:"op"`
	Inputs []string `hcl:"inputs,optional"`
	Remain hcl.Body `hcl:",remain"`
}

// Load walks the given paths for .hcl files and returns every graph
// definition they contain, in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var defs []*Definition

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, graph := range root.Graphs {
			def, err := l.translateGraph(graph)
			if err != nil {
				return nil, fmt.Errorf("graph %q in %s: %w", graph.Name, file, err)
			}
			defs = append(defs, def)
		}
	}

	logger.Debug("HCL loading complete.", "graphs", len(defs))
	return defs, nil
}

func (l *Loader) translateGraph(block *graphBlock) (*Definition, error) {
	def := &Definition{
		Name:     block.Name,
		Strategy: block.Strategy,
		Mode:     block.Mode,
		Evict:    block.Evict,
	}
	for _, node := range block.Nodes {
		translated, err := l.translateNode(node)
		if err != nil {
			return nil, err
		}
		def.Nodes = append(def.Nodes, translated)
	}
	return def, nil
}

// opAttrs whitelists the op-specific attributes each node kind accepts. An
// attribute on the wrong op would otherwise decode silently and be dropped
// by the builder.
var opAttrs = map[string]map[string]bool{
	"input":  {"lower": true, "upper": true},
	"affine": {"weights": true, "bias": true},
	"relu":   {},
}

// translateNode decodes the op-specific attributes left in the block's
// remainder body.
func (l *Loader) translateNode(block *nodeBlock) (*NodeDef, error) {
	def := &NodeDef{
		Name:   block.Name,
		Op:     block.Op,
		Inputs: block.Inputs,
	}

	allowed, ok := opAttrs[block.Op]
	if !ok {
		return nil, fmt.Errorf("node %q: unknown op %q", block.Name, block.Op)
	}

	attrs, diags := block.Remain.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("node %q: %w", block.Name, diags)
	}

	for name, attr := range attrs {
		if !allowed[name] {
			return nil, fmt.Errorf("node %q: unsupported attribute %q for op %q", block.Name, name, block.Op)
		}

		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("node %q: attribute %q: %w", block.Name, name, diags)
		}

		var err error
		switch name {
		case "lower":
			err = assignFloat(val, &def.Lower)
		case "upper":
			err = assignFloat(val, &def.Upper)
		case "bias":
			err = assignFloat(val, &def.Bias)
		case "weights":
			err = assignFloatList(val, &def.Weights)
		}
		if err != nil {
			return nil, fmt.Errorf("node %q: attribute %q: %w", block.Name, name, err)
		}
	}
	return def, nil
}

func assignFloat(val cty.Value, out *float64) error {
	converted, err := convert.Convert(val, cty.Number)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(converted, out)
}

func assignFloatList(val cty.Value, out *[]float64) error {
	converted, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(converted, out)
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
