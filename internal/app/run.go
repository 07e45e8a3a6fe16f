package app

import (
	"context"
	"fmt"

	"github.com/vk/propdag/internal/ctxlog"
	"github.com/vk/propdag/internal/dag"
	"github.com/vk/propdag/internal/netcfg"
)

// Run loads every graph definition under the configured path and executes
// them one after another, printing the resulting boundary intervals.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	defs, err := a.loader.Load(ctx, a.config.GraphPath)
	if err != nil {
		return fmt.Errorf("failed to load graph definitions: %w", err)
	}
	if len(defs) == 0 {
		a.logger.Warn("No graph definitions found.", "path", a.config.GraphPath)
		return nil
	}
	a.logger.Debug("Graph definitions loaded.", "count", len(defs))

	for _, def := range defs {
		if err := a.runGraph(ctx, def); err != nil {
			return fmt.Errorf("graph %q: %w", def.Name, err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) runGraph(ctx context.Context, def *netcfg.Definition) error {
	graph, err := netcfg.Build(def)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	model, err := dag.New(graph.Nodes, graph.Opts)
	if err != nil {
		return fmt.Errorf("failed to construct model: %w", err)
	}

	a.logger.Info("Starting propagation run.",
		"graph", def.Name,
		"mode", string(graph.Args.Mode),
		"strategy", string(model.Strategy()),
		"nodes", len(graph.Nodes))

	if err := model.Run(ctx); err != nil {
		return fmt.Errorf("propagation failed: %w", err)
	}
	a.logger.Info("Propagation run finished.", "graph", def.Name)

	order := model.Nodes()
	source, sink := order[0], order[len(order)-1]
	fmt.Fprintf(a.outW, "%s: %s in %s -> %s in %s\n",
		def.Name,
		source.Name(), graph.Cache.Bounds[source.Name()],
		sink.Name(), graph.Cache.Bounds[sink.Name()])
	return nil
}
