package display

import (
	"fmt"
	"os"

	"github.com/abcsFrederick/cryoem-pipeline/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Magenta != "" {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, `  ____                  _____ __  __
 / ___|_ __ _   _  ___ | ____|  \/  |
| |   | '__| | | |/ _ \|  _| | |\/| |
| |___| |  | |_| | (_) | |___| |  | |
 \____|_|   \__, |\___/|_____|_|  |_|  pipeline
            |___/
`)
	if term.Magenta != "" {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
