// Package pipeline orchestrates file discovery, frame grouping, per-unit
// stage execution (settle, import, stack, compress, export, verify), and
// batch summary reporting.
package pipeline
