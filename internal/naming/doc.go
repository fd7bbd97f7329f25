// Package naming derives movie and output names from raw frame filenames:
// trimming trailing frame counters, building scratch/storage paths, and
// resolving name collisions between work units.
package naming
