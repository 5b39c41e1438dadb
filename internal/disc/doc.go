// Package disc talks to physical optical drives.
//
// It resolves device paths, reads the OS mount table, mounts and unmounts
// media, authors ISO images, dispatches burns to the CD or DVD/BD writer,
// waits for burned media to reappear, and ejects. External tools run through
// runner.Runner so device quirks stay isolated from the pipeline that
// sequences them.
package disc
