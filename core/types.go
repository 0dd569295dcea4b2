package core

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultLaunchThreshold is the number of qualifying launches before the rating prompt shows.
const DefaultLaunchThreshold = 5

// ReminderState is the persisted reminder record, one per installation.
type ReminderState struct {
	LaunchCount      int    `json:"launch_count"`
	Dismissed        bool   `json:"dismissed"`
	StoredAppVersion string `json:"stored_app_version"`
}

// DefaultState returns the record written on first access and on every reset.
func DefaultState() ReminderState {
	return ReminderState{LaunchCount: 0, Dismissed: false, StoredAppVersion: ""}
}

// Validate reports whether the record can be trusted as loaded.
func (s ReminderState) Validate() error {
	if s.LaunchCount < 0 {
		return errors.New("negative launch count")
	}
	return nil
}

// Outcome is the closed set of results of a reminder check.
type Outcome int

const (
	NotShown Outcome = iota
	Rated
	Dismissed
)

func (o Outcome) String() string {
	switch o {
	case NotShown:
		return "not_shown"
	case Rated:
		return "rated"
	case Dismissed:
		return "dismissed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText lets outcomes appear by name in JSON and logs.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Choice is the button a user picked in a two-button prompt.
type Choice int

const (
	ChoicePrimary Choice = iota
	ChoiceSecondary
)

func (c Choice) String() string {
	if c == ChoicePrimary {
		return "primary"
	}
	return "secondary"
}

// AppIdentity identifies the application in the platform store.
type AppIdentity struct {
	PackageFamilyName string `json:"package_family_name" koanf:"package_family_name" env:"RATEREMINDER_PACKAGE_FAMILY_NAME"`
	AppID             string `json:"app_id" koanf:"app_id" env:"RATEREMINDER_APP_ID"`
}

// ReviewURI returns the store review deep link for the given form factor.
// Phones address the app by store id, everything else by package family name.
func (a AppIdentity) ReviewURI(phone bool) (string, error) {
	if phone {
		id := strings.TrimSpace(a.AppID)
		if id == "" {
			return "", &ConfigurationError{Field: "app_id", Reason: "required for phone store review"}
		}
		return "ms-windows-store:reviewapp?appid=" + id, nil
	}
	pfn := strings.TrimSpace(a.PackageFamilyName)
	if pfn == "" {
		return "", &ConfigurationError{Field: "package_family_name", Reason: "required for store review"}
	}
	return "ms-windows-store:REVIEW?PFN=" + pfn, nil
}
