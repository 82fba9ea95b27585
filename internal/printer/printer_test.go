package printer

import (
	"testing"

	"github.com/malphas-lang/malphas-unroll/internal/parser"
)

// ----------------------------------------------------------------------------
// Test Helpers (esbuild-style)
// ----------------------------------------------------------------------------

// expectPrinted verifies the canonical rendering of a single statement.
func expectPrinted(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		p := parser.New(input)
		stmt := p.ParseStmt()
		if errs := p.Errors(); len(errs) > 0 {
			t.Fatalf("parse errors: %v", errs)
		}
		actual := New(Options{}).Stmt(stmt)
		if actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// expectPrintedFile verifies the rendering of a whole file.
func expectPrintedFile(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		p := parser.New(input)
		file := p.ParseFile()
		if errs := p.Errors(); len(errs) > 0 {
			t.Fatalf("parse errors: %v", errs)
		}
		actual := New(Options{}).File(file)
		if actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func TestLetAndConst(t *testing.T) {
	expectPrinted(t, "let x:u8=1+2*3;", "let x: u8 = 1 + 2 * 3;")
	expectPrinted(t, "let mut y;", "let mut y;")
	expectPrinted(t, "let (a,b)=pair;", "let (a, b) = pair;")
	expectPrinted(t, "const i:usize=0;", "const i: usize = 0;")
	expectPrinted(t, "let r:&'a mut [u8]=x;", "let r: &'a mut [u8] = x;")
	expectPrinted(t, "let a=[0u8;4];", "let a = [0u8; 4];")
	expectPrinted(t, "let t=(1,);", "let t = (1,);")
	expectPrinted(t, "let v:Vec<Vec<u8>>=Vec::new();", "let v: Vec<Vec<u8>> = Vec::new();")
}

func TestRawAndByteLiterals(t *testing.T) {
	expectPrinted(t, `let s=r#"say "hi""#;`, `let s = r#"say "hi""#;`)
	expectPrinted(t, `let p=r"C:\dir";`, `let p = r"C:\dir";`)
	expectPrinted(t, `let b=b"bytes";`, `let b = b"bytes";`)
	expectPrinted(t, `let c=b'a';`, `let c = b'a';`)
}

func TestExpressionStatements(t *testing.T) {
	expectPrinted(t, "x+=1;", "x += 1;")
	expectPrinted(t, "f(a,b);", "f(a, b);")
	expectPrinted(t, "&mut v[0];", "&mut v[0];")
	expectPrinted(t, "xs.iter().map(|x|x*2).collect::<Vec<u32>>();", "xs.iter().map(|x| x * 2).collect::<Vec<u32>>();")
	expectPrinted(t, "(a+b)*c", "(a + b) * c")
	expectPrinted(t, "n as u64", "n as u64")
	expectPrinted(t, "t.0", "t.0")
	expectPrinted(t, "read()?;", "read()?;")
	expectPrinted(t, "println!(\"{}\", i);", "println!(\"{}\", i);")
	expectPrinted(t, "let p=Point{x:1,y};", "let p = Point { x: 1, y };")
	expectPrinted(t, "let f=move|a:u8,b|a+b;", "let f = move |a: u8, b| a + b;")
	expectPrinted(t, "return;", "return;")
	expectPrinted(t, "break;", "break;")
}

func TestRanges(t *testing.T) {
	expectPrinted(t, "for i in 0..3 {}", "for i in 0..3 {}")
	expectPrinted(t, "for i in ..=5 {}", "for i in ..=5 {}")
	expectPrinted(t, "for i in 2u8.. {}", "for i in 2u8.. {}")
	expectPrinted(t, "let r=a..b;", "let r = a..b;")
}

func TestBlocks(t *testing.T) {
	expectPrinted(t, "for i in 0..3 { f(i); }", "for i in 0..3 {\n    f(i);\n}")
	expectPrinted(t, "#[allow(dead_code)] { x; }", "#[allow(dead_code)]\n{\n    x;\n}")
	expectPrinted(t, "unsafe { g() }", "unsafe {\n    g()\n}")
	expectPrinted(t, "loop { break }", "loop {\n    break\n}")
	expectPrinted(t, "while let Some(x)=it.next() { use_it(x); }", "while let Some(x) = it.next() {\n    use_it(x);\n}")
	expectPrinted(t, "{ { a; } }", "{\n    {\n        a;\n    }\n}")
}

func TestIfChains(t *testing.T) {
	expectPrinted(t, "if a{b}else if c{d}else{e}", "if a {\n    b\n} else if c {\n    d\n} else {\n    e\n}")
	expectPrinted(t, "if let Some(v)=opt{v}else{0}", "if let Some(v) = opt {\n    v\n} else {\n    0\n}")
}

func TestMatch(t *testing.T) {
	expectPrinted(t, "match x{1|2=>a,_=>{}}", "match x {\n    1 | 2 => a,\n    _ => {}\n}")
	expectPrinted(t, "match p{Point{x,..} if x>0=>x,_=>0}", "match p {\n    Point { x, .. } if x > 0 => x,\n    _ => 0,\n}")
}

// ----------------------------------------------------------------------------
// Items
// ----------------------------------------------------------------------------

func TestFunctions(t *testing.T) {
	expectPrintedFile(t,
		"#[inline] pub fn f<T>(&self,x:T)->T where T: Copy{x}",
		"#[inline]\npub fn f<T>(&self, x: T) -> T where T: Copy {\n    x\n}\n")
	expectPrintedFile(t,
		"const unsafe fn g(){}",
		"const unsafe fn g() {}\n")
	expectPrintedFile(t,
		"fn a(){}\nstruct S;",
		"fn a() {}\n\nstruct S;\n")
}

func TestImplBlocks(t *testing.T) {
	expectPrintedFile(t,
		"impl Foo { fn a(&self){} fn b(){} }",
		"impl Foo {\n    fn a(&self) {}\n\n    fn b() {}\n}\n")
}

func TestCustomIndent(t *testing.T) {
	p := parser.New("{ a; }")
	block := p.ParseBlock()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	got := New(Options{Indent: "\t"}).Block(block)
	if want := "{\n\ta;\n}"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMarginSkipsLiteralNewlines(t *testing.T) {
	p := parser.New("{ let s = \"a\nb\"; f(s); }")
	block := p.ParseBlock()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	got := New(Options{Indent: "  ", Margin: "\t"}).Block(block)
	if want := "{\n\t  let s = \"a\nb\";\n\t  f(s);\n\t}"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

// Printed output must parse back to a tree that prints the same way.
func TestRoundTrip(t *testing.T) {
	const src = `
#[unroll_for_loops]
fn mix(state: &mut [u32; 16], rounds: usize) -> u32 {
    let mut acc = 0u32;
    for r in 0..rounds {
        for i in 0..4 {
            let j = (i + 1) % 4;
            state[i] = state[i].wrapping_add(state[j]).rotate_left(7);
            if state[i] & 1 == 0 { acc ^= state[i]; } else if let Some(v) = lookup(i) { acc += v; }
        }
    }
    match acc { 0 => 1, n if n > 10 => { n - 10 } _ => acc }
}
`

	p := parser.New(src)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	first := New(Options{}).File(file)

	p = parser.New(first)
	file = p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("reparse errors: %v\n%s", errs, first)
	}
	second := New(Options{}).File(file)

	if first != second {
		t.Fatalf("round trip mismatch\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}
