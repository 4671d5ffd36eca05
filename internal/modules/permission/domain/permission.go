package domain

type Capability string

const (
	CapabilityReadHeartRate  Capability = "read-heart-rate"
	CapabilityWriteHeartRate Capability = "write-heart-rate"
)

// Required is the exact capability set pulse asks for.
func Required() []Capability {
	return []Capability{CapabilityReadHeartRate, CapabilityWriteHeartRate}
}

// Satisfied reports whether granted is a superset of Required.
func Satisfied(granted []Capability) bool {
	have := make(map[Capability]struct{}, len(granted))
	for _, c := range granted {
		have[c] = struct{}{}
	}
	for _, c := range Required() {
		if _, ok := have[c]; !ok {
			return false
		}
	}
	return true
}
