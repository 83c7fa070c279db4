package commands

import (
	"github.com/leapstack-labs/vinline/internal/cli/output"
	"github.com/leapstack-labs/vinline/internal/inliner"
	"github.com/spf13/cobra"
)

// NewModulesCommand creates the modules command.
func NewModulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "modules <file>",
		Aliases: []string{"ls"},
		Short:   "List the modules defined in a file",
		Long: `List every module of a Verilog file in declaration order, with its
ports, parameters, the modules it instantiates and the modules that
instantiate it.

Output format:
  - TTY: Styled table
  - Piped/redirected: Markdown table
  - --output json: JSON`,
		Example: `  vinline modules design.v
  vinline modules design.v --output json`,
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
			return renderModules(cc.Renderer, d)
		},
	}
	return cmd
}

func modulesJSON(d *inliner.Design) output.ModulesOutput {
	out := output.ModulesOutput{File: d.File, Modules: make([]output.ModuleInfo, 0, d.Modules.Len())}
	for _, m := range d.Modules.Modules() {
		out.Modules = append(out.Modules, output.ModuleInfo{
			Name:           m.Name,
			File:           m.File,
			Ports:          nonNil(m.Ports),
			Parameters:     nonNil(m.Parameters),
			Instantiates:   nonNil(d.Graph.Callees(m.Name)),
			InstantiatedBy: nonNil(d.Graph.Callers(m.Name)),
		})
	}
	return out
}

func renderModules(r *output.Renderer, d *inliner.Design) error {
	info := modulesJSON(d)
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(info)
	}

	if len(info.Modules) == 0 {
		r.Warning("no modules found in " + d.File)
		return nil
	}

	r.Header(1, "Modules")
	rows := make([][]string, 0, len(info.Modules))
	for _, m := range info.Modules {
		rows = append(rows, []string{
			m.Name,
			output.FormatList(m.Ports),
			output.FormatList(m.Parameters),
			output.FormatList(m.Instantiates),
			output.FormatList(m.InstantiatedBy),
		})
	}
	r.Table([]string{"Module", "Ports", "Parameters", "Instantiates", "Instantiated by"}, rows)
	return nil
}

// nonNil keeps empty lists as [] in JSON output.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
