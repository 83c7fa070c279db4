package output

// JSON shapes written by the commands.

// InlineOutput is the result of the inline command.
type InlineOutput struct {
	File    string   `json:"file"`
	Output  string   `json:"output,omitempty"`
	Modules []string `json:"modules"`
}

// ModuleInfo describes one indexed module.
type ModuleInfo struct {
	Name           string   `json:"name"`
	File           string   `json:"file,omitempty"`
	Ports          []string `json:"ports"`
	Parameters     []string `json:"parameters"`
	Instantiates   []string `json:"instantiates"`
	InstantiatedBy []string `json:"instantiated_by"`
}

// ModulesOutput is the result of the modules command.
type ModulesOutput struct {
	File    string       `json:"file"`
	Modules []ModuleInfo `json:"modules"`
}

// GraphNode is one module in a graph level.
type GraphNode struct {
	Name           string   `json:"name"`
	Instantiates   []string `json:"instantiates"`
	InstantiatedBy []string `json:"instantiated_by"`
}

// GraphLevel groups modules that only instantiate modules of lower levels.
type GraphLevel struct {
	Level   int         `json:"level"`
	Modules []GraphNode `json:"modules"`
}

// GraphOutput is the result of the graph command.
type GraphOutput struct {
	Levels       []GraphLevel `json:"levels"`
	TotalModules int          `json:"total_modules"`
	TotalEdges   int          `json:"total_edges"`
}

// TokenInfo is one token of the tokens command.
type TokenInfo struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// JobResult is the outcome of one job.
type JobResult struct {
	Module     string `json:"module"`
	Input      string `json:"input"`
	Output     string `json:"output"`
	Prefix     string `json:"prefix,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	Bytes      int    `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
}

// JobsOutput is the result of the jobs command.
type JobsOutput struct {
	RunID      string      `json:"run_id"`
	Results    []JobResult `json:"results"`
	Failed     int         `json:"failed"`
	DurationMS int64       `json:"duration_ms"`
}
