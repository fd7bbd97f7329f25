package imod

import "github.com/abcsFrederick/cryoem-pipeline/internal/config"

// BuildStackArgs constructs the newstack command line for one movie:
// the raw frames in group order followed by the output stack path.
// "-bytes 0" keeps the output in the input's native storage mode, matching
// the acquisition workflow's invocation. Extra user arguments are inserted
// before the input list so newstack option parsing sees them first.
func BuildStackArgs(cfg *config.Config, inputs []string, output string) []string {
	args := make([]string, 0, len(inputs)+len(cfg.ExtraNewstackArgs)+4)
	args = append(args, "newstack", "-bytes", "0")
	args = append(args, cfg.ExtraNewstackArgs...)
	args = append(args, inputs...)
	args = append(args, output)
	return args
}
