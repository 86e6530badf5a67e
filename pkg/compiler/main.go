// Package compiler implements a single-pass-per-phase compiler for
// SimpleP, a small Pascal-like language, targeting x86-64 AT&T-syntax
// assembly text.
//
// Pipeline: SimpleP source → Lex → Parse → Analyze → GenerateHL → GenerateAsm
package compiler
