// Package io provides the file plumbing shared by every graphimg artifact.
//
// # Write-once artifacts
//
// Artifacts are written through [Create], which opens a temporary file next
// to the destination. [File.Commit] flushes, fsyncs and renames it into place;
// [File.Abort] removes it. A stage that fails therefore never leaves a
// half-written artifact that a later stage could mistake for a valid one:
//
//	f, err := pkgio.Create("out/mem_init.hex")
//	if err != nil {
//	    return err
//	}
//	defer f.Abort() // no-op after a successful Commit
//	if err := encode(f); err != nil {
//	    return err
//	}
//	return f.Commit()
//
// # Reading artifacts
//
// [Open] opens an artifact for reading and rejects missing or empty files
// with IO_ERROR, since an empty intermediate artifact can never be valid.
//
// # Edge lists
//
// [WriteEdgeList] exports a graph as JSON for inspection by external tools.
//
// All errors carry codes from pkg/errors.
package io
