// internal/runutil/runutil.go
package runutil

import "runtime"

// EffectiveJobs returns the number of concurrent simulator calls to use.
// jobs <= 0 means one per CPU. The result never exceeds the number of
// replicates n (when n > 0) and is at least 1.
func EffectiveJobs(jobs, n int) int {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if n > 0 && jobs > n {
		jobs = n
	}
	if jobs < 1 {
		jobs = 1
	}
	return jobs
}
