package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/vinline/internal/cli/output"
	"github.com/leapstack-labs/vinline/internal/dag"
	"github.com/spf13/cobra"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Show the module instantiation graph",
		Long: `Show the modules of a file grouped by inline level.

Level 0 holds the leaf modules, which instantiate nothing. Every module of
level N only instantiates modules of lower levels, so levels are inlined in
order. A dependency cycle is reported as an error.

With --top only the named modules and the modules they instantiate are
shown.`,
		Example: `  vinline graph design.v
  vinline graph design.v --top TOP --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			d, err := cc.Inliner.Load(args[0])
			if err != nil {
				return err
			}

			g := d.Graph
			if len(cc.Cfg.Top) > 0 {
				if _, err := d.Modules.Lookup(cc.Cfg.Top...); err != nil {
					return err
				}
				g = g.Subgraph(g.Closure(cc.Cfg.Top...))
			}
			return renderGraph(cc.Renderer, g)
		},
	}

	cmd.Flags().StringSliceP("top", "t", nil, "Only show these modules and their dependencies")

	return cmd
}

func renderGraph(r *output.Renderer, g *dag.Graph) error {
	levels, err := g.Levels()
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return graphJSON(r, g, levels)
	case output.ModeMarkdown:
		return graphMarkdown(r, g, levels)
	default:
		return graphText(r, g, levels)
	}
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, g *dag.Graph, levels [][]string) error {
	styles := r.Styles()

	r.Header(1, "Instantiation Graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, name := range level {
			callees := g.Callees(name)
			callers := g.Callers(name)

			r.Printf("  %s\n", styles.Module.Render(name))
			if len(callees) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("instantiates:"), strings.Join(callees, ", "))
			}
			if len(callers) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("instantiated by:"), strings.Join(callers, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d modules, %d instantiation edges", g.NodeCount(), g.EdgeCount())))

	return nil
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, g *dag.Graph, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Instantiation Graph"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Leaves)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, name := range level {
			callees := g.Callees(name)
			callers := g.Callers(name)

			r.Printf("- %s\n", name)
			if len(callees) > 0 {
				r.Printf("  - instantiates: %s\n", strings.Join(callees, ", "))
			}
			if len(callers) > 0 {
				r.Printf("  - instantiated by: %s\n", strings.Join(callers, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Modules", fmt.Sprintf("%d", g.NodeCount())))
	r.Println(output.FormatKeyValue("Total Edges", fmt.Sprintf("%d", g.EdgeCount())))

	return nil
}

// graphJSON outputs the graph in JSON format.
func graphJSON(r *output.Renderer, g *dag.Graph, levels [][]string) error {
	out := output.GraphOutput{
		Levels:       make([]output.GraphLevel, 0, len(levels)),
		TotalModules: g.NodeCount(),
		TotalEdges:   g.EdgeCount(),
	}

	for i, level := range levels {
		gl := output.GraphLevel{
			Level:   i,
			Modules: make([]output.GraphNode, 0, len(level)),
		}
		for _, name := range level {
			gl.Modules = append(gl.Modules, output.GraphNode{
				Name:           name,
				Instantiates:   nonNil(g.Callees(name)),
				InstantiatedBy: nonNil(g.Callers(name)),
			})
		}
		out.Levels = append(out.Levels, gl)
	}

	return r.JSON(out)
}
