// Package plan partitions discovered files into stack groups and builds the
// per-unit execution plan (movie name, stage toggles, scratch and storage
// paths). It performs no I/O; the pipeline runner executes the plans.
package plan
