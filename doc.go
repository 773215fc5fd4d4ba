// Package cwlpack packs a multi-file CWL workflow into one self-contained
// document, and unpacks such a document back into discrete files.
//
// Packing resolves every cross-file reference (step run files, imported
// schema types, $import and $include directives), fetches each distinct
// document exactly once, assigns stable local identifiers and emits either a
// single process document or a $graph document whose root process carries the
// identifier "main".
//
// End-users typically interact via the high-level Service façade exposed by
// this package:
//
//	srv := cwlpack.New()
//	doc, err := srv.Pack(ctx, "workflows/analysis.cwl")
//	if err != nil { ... }
//	data, _ := yml.Marshal(doc)
//
// See the individual sub-packages for the pipeline stages.
package cwlpack
