package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// AndTop is a two-module design: a leaf AND gate and a top module that
// instantiates it once with named connections.
const AndTop = `module AND2(a, b, o);
  input a, b;
  output o;
  assign o = a & b;
endmodule

module TOP(x, y, z);
  input x, y;
  output z;
  AND2 u0(.a(x),.b(y),.o(z));
endmodule
`

// AndTopInlined is TOP from AndTop after inlining.
const AndTopInlined = "module TOP(x, y, z);\n" +
	"  input x, y;\n" +
	"  output z;\n" +
	"  \n" +
	"  wire _u0_a, _u0_b;\n" +
	"  assign _u0_a = x;\n" +
	"  assign _u0_b = y;\n" +
	"  wire _u0_o;\n" +
	"  assign _u0_o = _u0_a & _u0_b;\n" +
	"\n" +
	"  assign z = _u0_o;\n" +
	"\n" +
	"endmodule"

// Hierarchy is a three-level design: TOP instantiates HALF twice and HALF
// instantiates AND2 and XOR2.
const Hierarchy = `// three levels
module AND2(a, b, o);
  input a, b;
  output o;
  assign o = a & b;
endmodule

module XOR2(a, b, o);
  input a, b;
  output o;
  assign o = a ^ b;
endmodule

module HALF(a, b, s, c);
  input a, b;
  output s, c;
  XOR2 g0(.a(a), .b(b), .o(s));
  AND2 g1(a, b, c);
endmodule

module TOP(p, q, r, s0, c0, s1, c1);
  input p, q, r;
  output s0, c0, s1, c1;
  HALF h0(.a(p), .b(q), .s(s0), .c(c0));
  HALF h1(.a(q), .b(r), .s(s1), .c(c1));
endmodule
`

// Cyclic has two modules that instantiate each other and one that stands
// apart.
const Cyclic = `module A(i, o);
  input i;
  output o;
  B b0(.i(i), .o(o));
endmodule

module B(i, o);
  input i;
  output o;
  A a0(.i(i), .o(o));
endmodule

module C(i, o);
  input i;
  output o;
  assign o = ~i;
endmodule
`

// WriteVerilog writes src to name under a fresh temporary directory and
// returns its path.
func WriteVerilog(t testing.TB, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
