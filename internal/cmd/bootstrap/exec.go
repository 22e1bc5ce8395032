package bootstrap

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"syscall"
)

// execHandoff replaces the bootstrap process with the main service command.
// An empty argv means bootstrap was the whole job.
func execHandoff(argv []string) error {
	if len(argv) == 0 {
		log.Printf("bootstrap complete")
		return nil
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("resolve command %q: %w", argv[0], err)
	}
	log.Printf("handing off to %s", path)
	if err := syscall.Exec(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
