// Command burncheck burns a known dataset to optical media, reads it back,
// and verifies checksums. It exits 0 only when the drive wrote and read the
// data correctly; each failing stage has its own non-zero exit status.
package main
