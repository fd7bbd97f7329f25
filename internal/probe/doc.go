// Package probe reads MRC image metadata through IMOD's header tool, used
// for the per-file stats shown during a run. Probe failures are informational
// only and never fail a work unit.
package probe
