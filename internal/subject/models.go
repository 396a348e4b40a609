// Package subject tracks monitored people and their caregiver chains.
//
// Subjects are keyed by their messaging address and created the first time an
// inbound message or configuration command is observed for that address. They
// are never deleted; switching every feature off is how a subject is retired.
package subject

import "time"

type Role string

const (
	RoleMonitored   Role = "monitored"
	RoleIndependent Role = "independent"
)

// Features are the monitoring routines that may run for a subject. Each flag
// gates both proactive nudges and the creation of new obligation instances
// for that kind.
type Features struct {
	Hydration  bool `json:"hydration"`
	Wellness   bool `json:"wellness"`
	Inactivity bool `json:"inactivity"`
}

type Subject struct {
	Address   string    `json:"address"`
	Role      Role      `json:"role"`
	Features  Features  `json:"features"`
	CreatedAt time.Time `json:"created_at"`
}

type Contact struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// CaregiverChain is the ordered set of people alerted when a subject stops
// responding. An address appears at most once across primary and secondaries.
type CaregiverChain struct {
	SubjectAddress string    `json:"subject_address"`
	Primary        *Contact  `json:"primary,omitempty"`
	Secondaries    []Contact `json:"secondaries,omitempty"`
}

// Contacts returns the chain in notification order, primary first.
func (c CaregiverChain) Contacts() []Contact {
	var out []Contact
	if c.Primary != nil {
		out = append(out, *c.Primary)
	}
	return append(out, c.Secondaries...)
}

// Contains reports whether the address is already anywhere in the chain.
func (c CaregiverChain) Contains(address string) bool {
	if c.Primary != nil && c.Primary.Address == address {
		return true
	}
	for _, s := range c.Secondaries {
		if s.Address == address {
			return true
		}
	}
	return false
}
