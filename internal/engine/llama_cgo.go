//go:build llama

package engine

// cgo link directives for the in-process llama runtime.
// - rpath of $ORIGIN lets the loader find libllama.so next to the built
//   binary (./bin).
// - -L${SRCDIR}/../../bin lets the linker find libllama.so at link time when
//   building the 'llama' variant.

/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"
