// Package mmaputil reinterprets struct memory as bytes and back, for
// code that keeps its state inside a memory-mapped file.
package mmaputil

import "unsafe"

// PointerToBytes returns the memory of *p as a byte slice of the given
// size.
func PointerToBytes[T any](p *T, size int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), size)
}

// BytesToPointer reinterprets the start of b as a *T. The slice must be
// at least as long as T and properly aligned for it; a page-aligned
// mapping always is.
func BytesToPointer[T any](b []byte) *T {
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}
