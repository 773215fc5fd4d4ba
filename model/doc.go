// Package model contains the in-memory representation of a resolved document
// graph: locations, nodes, reference edges and the error taxonomy shared by
// the packing pipeline.
//
// A graph is built once per pack or unpack invocation, exclusively owns its
// nodes, and is discarded when the invocation completes.
package model
