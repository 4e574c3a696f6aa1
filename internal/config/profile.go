package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"orders/internal/domain/bookings"
)

// Profile is the deployment-specific part of the booking rules.
type Profile struct {
	Statuses      []string            `yaml:"statuses"`
	DefaultStatus string              `yaml:"default_status"`
	MinLeadTime   string              `yaml:"min_lead_time"`
	Transitions   map[string][]string `yaml:"transitions"`
}

func DefaultProfile() Profile {
	return Profile{
		Statuses: []string{
			string(bookings.StatusPending),
			string(bookings.StatusConfirmed),
			string(bookings.StatusCancelled),
			string(bookings.StatusCompleted),
		},
		DefaultStatus: string(bookings.StatusConfirmed),
		MinLeadTime:   bookings.DefaultMinLeadTime.String(),
	}
}

func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read policy profile: %w", err)
	}
	return ParseProfile(data)
}

func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse policy profile: %w", err)
	}
	return p, nil
}

func (p Profile) Policy(loc *time.Location, mode bookings.LookupMode) (bookings.Policy, error) {
	statuses := make([]bookings.Status, 0, len(p.Statuses))
	for _, s := range p.Statuses {
		statuses = append(statuses, bookings.Status(s))
	}

	var transitions map[bookings.Status][]bookings.Status
	if p.Transitions != nil {
		transitions = make(map[bookings.Status][]bookings.Status, len(p.Transitions))
		for from, targets := range p.Transitions {
			for _, to := range targets {
				transitions[bookings.Status(from)] = append(transitions[bookings.Status(from)], bookings.Status(to))
			}
			if _, ok := transitions[bookings.Status(from)]; !ok {
				transitions[bookings.Status(from)] = nil
			}
		}
	}

	lifecycle, err := bookings.NewLifecycle(statuses, transitions)
	if err != nil {
		return bookings.Policy{}, fmt.Errorf("invalid policy profile: %w", err)
	}

	minLead := bookings.DefaultMinLeadTime
	if p.MinLeadTime != "" {
		minLead, err = time.ParseDuration(p.MinLeadTime)
		if err != nil {
			return bookings.Policy{}, fmt.Errorf("invalid min_lead_time %q: %w", p.MinLeadTime, err)
		}
	}

	defaultStatus := bookings.Status(p.DefaultStatus)
	if defaultStatus == "" {
		defaultStatus = statuses[0]
		if lifecycle.Has(bookings.StatusConfirmed) {
			defaultStatus = bookings.StatusConfirmed
		}
	}

	policy := bookings.Policy{
		Lifecycle:     lifecycle,
		DefaultStatus: defaultStatus,
		MinLeadTime:   minLead,
		Location:      loc,
		LookupMode:    mode,
	}
	if err := policy.Validate(); err != nil {
		return bookings.Policy{}, fmt.Errorf("invalid policy profile: %w", err)
	}

	return policy, nil
}
