package compiler

// Optimize is the hook the -o driver flag calls into. The pipeline has no
// optimization pass; Optimize returns seq unchanged so that -o is accepted
// as a flag without changing behavior, rather than rejected as unknown.
func Optimize(seq *InstructionSequence) *InstructionSequence {
	return seq
}
