package domain_test

import (
	"testing"

	"pulse/internal/modules/permission/domain"
)

func TestSatisfied(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		granted []domain.Capability
		want    bool
	}{
		{"none", nil, false},
		{"read only", []domain.Capability{domain.CapabilityReadHeartRate}, false},
		{"write only", []domain.Capability{domain.CapabilityWriteHeartRate}, false},
		{"both", []domain.Capability{domain.CapabilityWriteHeartRate, domain.CapabilityReadHeartRate}, true},
		{"superset", []domain.Capability{"read-steps", domain.CapabilityReadHeartRate, domain.CapabilityWriteHeartRate}, true},
	}
	for _, tc := range cases {
		if got := domain.Satisfied(tc.granted); got != tc.want {
			t.Fatalf("%s: expected %t, got %t", tc.name, tc.want, got)
		}
	}
}
