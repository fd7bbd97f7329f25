package plan

// Group is an ordered view over consecutive discovered files that form one
// movie. Partial marks a trailing group with fewer than frames-per-stack
// members.
type Group struct {
	Members []string
	Partial bool
}

// UnitPlan describes everything the runner needs to process one work unit.
// Paths refer to scratch-local copies except Members (project-relative
// originals) and StorageTarget.
type UnitPlan struct {
	Index   int    // 1-based position in discovery order.
	Name    string // Logical movie name, collision-resolved.
	Members []string
	Partial bool

	Stack       bool   // False for singletons (pass-through).
	StackOutput string // Scratch path of the stacked movie; empty when Stack is false.

	// ScratchFrames is the scratch copy destination for each member, parallel
	// to Members. Collision-resolved, so same-named frames from different
	// subdirectories never overwrite each other inside one group.
	ScratchFrames []string

	CompressInput string // Scratch artifact fed to lbzip2 (stack output or lone copy).
	FinalLocal    string // Scratch artifact after optional compression.
	StorageTarget string // Archival destination; empty when export is disabled.

	SkipPartial bool // Partial group under the "skip" policy: record and move on.
}
