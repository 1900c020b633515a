package session

import (
	"log"
	"os"
	"os/exec"
)

// Run launches the generated run script as a detached background process. It
// does not wait for completion or inspect the exit status; the engine's
// lifetime is independent of the session's.
func (s *Session) Run() {
	s.run("run clustering", func() error {
		log.Printf("running clustering...")
		cmd := exec.Command("bash", runScriptName)
		cmd.Dir = s.cfg.OutputDir
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return err
		}
		log.Printf("started %s (pid %d)", runScriptName, cmd.Process.Pid)
		return cmd.Process.Release()
	})
}
