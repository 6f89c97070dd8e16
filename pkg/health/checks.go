package health

import (
	"github.com/dd0wney/cluso-memstore/pkg/store"
)

// StoreCheck reports the record count of every store in ms.
func StoreCheck(ms *store.MainStore) CheckFunc {
	return func() Check {
		stats := ms.Statistics()
		records := make(map[string]any, len(stats))
		for name, st := range stats {
			records[name] = st.Records
		}
		return Check{
			Status:  StatusHealthy,
			Details: map[string]any{"types": len(stats), "records": records},
		}
	}
}

// ProgressCheck reports degraded until state reports done, and unhealthy
// once it reports an error.
func ProgressCheck(state func() (done bool, err error)) CheckFunc {
	return func() Check {
		done, err := state()
		switch {
		case err != nil:
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		case !done:
			return Check{Status: StatusDegraded, Message: "running"}
		default:
			return Check{Status: StatusHealthy, Message: "finished"}
		}
	}
}
