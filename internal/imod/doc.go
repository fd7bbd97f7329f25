// Package imod builds and executes IMOD commands (newstack for frame
// stacking) with captured output, and classifies common failure modes into
// operator-readable hints for the run report.
package imod
