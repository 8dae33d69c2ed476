package process

import "os"

// Kill sends a kill signal to pid alone. Used after KillProcessGroup in
// case the group signal missed the leader.
func Kill(pid int) {
	if pid <= 0 {
		return
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return
	}
	_ = p.Kill()
}
