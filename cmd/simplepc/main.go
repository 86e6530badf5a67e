// Command simplepc compiles a single SimpleP source file to x86-64
// assembly text, or dumps an intermediate stage of the pipeline,
// depending on which flag is given.
package main

import (
	"flag"
	"fmt"
	"os"

	"simplep/pkg/compiler"
	"simplep/pkg/utils"
)

func main() {
	printAST := flag.Bool("p", false, "print the AST")
	printDot := flag.Bool("g", false, "print the AST as Graphviz DOT")
	printSymtab := flag.Bool("s", false, "print the symbol table as CSV")
	printHL := flag.Bool("h", false, "print the high-level IR")
	optimize := flag.Bool("o", false, "optimise (equivalent to compile; optimiser is absent)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: simplepc [-p|-g|-s|-h|-o] <file.sp>")
		os.Exit(2)
	}

	fullPath, _, err := utils.GetPathInfo(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve input path %q: %v\n", args[0], err)
		os.Exit(1)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", fullPath, err)
		os.Exit(1)
	}

	if err := run(fullPath, string(data), *printAST, *printDot, *printSymtab, *printHL, *optimize); err != nil {
		os.Exit(1)
	}
}

func run(file, src string, printAST, printDot, printSymtab, printHL, optimize bool) error {
	switch {
	case printAST:
		tokens, err := compiler.Lex(file, src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		root, err := compiler.Parse(tokens)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		compiler.PrintAST(root, 0, func(line string) { fmt.Println(line) })
		return nil

	case printDot:
		tokens, err := compiler.Lex(file, src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		root, err := compiler.Parse(tokens)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		compiler.PrintGraphviz(root, func(line string) { fmt.Println(line) })
		return nil

	case printSymtab:
		tokens, err := compiler.Lex(file, src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		root, err := compiler.Parse(tokens)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		sema, err := compiler.Analyze(root)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		sema.Global().Print(os.Stdout)
		return nil

	case printHL:
		res, err := compiler.Compile(file, src)
		if err != nil {
			return err
		}
		fmt.Print(res.Seq.String())
		return nil

	default:
		res, err := compiler.Compile(file, src)
		if err != nil {
			return err
		}
		if optimize {
			res.Seq = compiler.Optimize(res.Seq)
		}
		fmt.Print(res.Asm)
		return nil
	}
}
