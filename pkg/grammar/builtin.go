package grammar

// builtinVerilog is the Verilog-2001 grammar.
// This is registered automatically when the package is loaded.
var builtinVerilog = NewGrammar("verilog").
	Operators(
		// Single character
		"+", "-", "*", "/", "%", "=", "<", ">", "!", "~", "&", "|", "^",
		"?", ":", ";", ",", ".", "(", ")", "[", "]", "{", "}", "#", "@",
		// Two character
		"==", "!=", "&&", "||", "<=", ">=", "<<", ">>", "**",
		"~&", "~|", "~^", "^~", "->", "+:", "-:",
		// Three character
		"===", "!==", "<<<", ">>>",
	).
	Keywords(
		// Structure
		"module", "endmodule", "macromodule", "primitive", "endprimitive",
		"function", "endfunction", "task", "endtask", "generate", "endgenerate",
		"genvar", "specify", "endspecify", "specparam", "table", "endtable",
		"config", "endconfig", "library", "design", "instance", "cell", "liblist", "use",
		"include", "incdir",
		// Ports and nets
		"input", "output", "inout", "wire", "reg", "tri", "tri0", "tri1",
		"triand", "trior", "trireg", "wand", "wor", "supply0", "supply1",
		"integer", "real", "realtime", "time", "event", "signed", "unsigned",
		"vectored", "scalared", "small", "medium", "large",
		"parameter", "localparam", "defparam", "automatic",
		// Behaviour
		"assign", "deassign", "always", "initial", "begin", "end", "fork", "join",
		"if", "else", "case", "casex", "casez", "endcase", "default",
		"for", "forever", "repeat", "while", "wait", "disable", "force", "release",
		"posedge", "negedge", "or",
		// Strengths
		"strong0", "strong1", "pull0", "pull1", "weak0", "weak1",
		"highz0", "highz1", "pullup", "pulldown",
		// Gate primitives
		"and", "nand", "nor", "xor", "xnor", "not", "buf",
		"bufif0", "bufif1", "notif0", "notif1",
		"nmos", "pmos", "cmos", "rnmos", "rpmos", "rcmos",
		"tran", "tranif0", "tranif1", "rtran", "rtranif0", "rtranif1",
		"ifnone", "edge", "noshowcancelled", "showcancelled",
		"pulsestyle_onevent", "pulsestyle_ondetect",
	).
	Binary('=', "=", "!", "<", ">").
	Binary('&', "&", "~").
	Binary('|', "|", "~").
	Binary('^', "~").
	Binary('~', "^").
	Binary('<', "<").
	Binary('>', ">", "-").
	Binary('*', "*").
	Binary(':', "+", "-").
	Ternary('=', "==", "!=").
	Ternary('<', "<<").
	Ternary('>', ">>").
	Build()

func init() {
	Register(builtinVerilog)
}
