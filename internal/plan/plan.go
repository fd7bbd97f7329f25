package plan

import (
	"github.com/abcsFrederick/cryoem-pipeline/internal/config"
	"github.com/abcsFrederick/cryoem-pipeline/internal/naming"
)

// BuildPlans turns stack groups into ordered unit plans. Movie names are
// derived from the first member of each group and deduplicated through the
// resolver, so repeated runs over an unchanged directory produce identical
// plans.
func BuildPlans(cfg *config.Config, groups []Group, resolver *naming.CollisionResolver) []UnitPlan {
	plans := make([]UnitPlan, 0, len(groups))

	for i, g := range groups {
		multi := len(g.Members) > 1 || cfg.Frames > 1

		p := UnitPlan{
			Index:   i + 1,
			Members: g.Members,
			Partial: g.Partial,
			Stack:   multi,
		}

		name := naming.MovieName(g.Members[0], multi)
		if p.Stack {
			out := resolver.Resolve(g.Members[0], naming.StackPath(cfg.ScratchDir, name))
			p.StackOutput = out
			p.CompressInput = out
			p.ScratchFrames = make([]string, len(g.Members))
			for j, m := range g.Members {
				p.ScratchFrames[j] = resolver.Resolve(m, naming.ScratchPath(cfg.ScratchDir, m))
			}
		} else {
			p.CompressInput = resolver.Resolve(g.Members[0], naming.ScratchPath(cfg.ScratchDir, g.Members[0]))
			p.ScratchFrames = []string{p.CompressInput}
		}
		p.Name = name

		p.FinalLocal = p.CompressInput
		if cfg.Compress {
			p.FinalLocal = naming.CompressedPath(p.CompressInput)
		}
		if cfg.StorageDir != "" {
			p.StorageTarget = naming.StoragePath(cfg.StorageDir, p.FinalLocal)
		}

		if g.Partial && cfg.PartialPolicy == config.PartialSkip {
			p.SkipPartial = true
		}

		plans = append(plans, p)
	}
	return plans
}
