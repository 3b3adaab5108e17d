// Package db provides database models for traefiker
package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// StringList is an ordered list stored as a JSON array column
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("type assertion to []byte or string failed")
	}

	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// ServiceStatus represents the lifecycle status of a service
type ServiceStatus string

const (
	StatusPulling ServiceStatus = "PULLING"
	StatusCreated ServiceStatus = "CREATED"
	StatusRunning ServiceStatus = "RUNNING"
	StatusStopped ServiceStatus = "STOPPED"
	StatusError   ServiceStatus = "ERROR"
)

// HasContainer reports whether a container reference is meaningful in this status
func (s ServiceStatus) HasContainer() bool {
	return s == StatusCreated || s == StatusRunning || s == StatusStopped
}

// Project groups services
type Project struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Image is a resolved container image reference
type Image struct {
	ID         string    `json:"id" db:"id"`
	Identifier string    `json:"identifier" db:"identifier"` // As supplied by the caller
	Name       string    `json:"name" db:"name"`             // Canonical reference
	Registry   string    `json:"registry" db:"registry"`
	Repository string    `json:"repository" db:"repository"`
	Tag        string    `json:"tag,omitempty" db:"tag"`
	Digest     string    `json:"digest,omitempty" db:"digest"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ContainerInfo records the container currently backing a service.
// Rows are replaced on recreation, never updated.
type ContainerInfo struct {
	ID          string    `json:"id" db:"id"`
	ContainerID string    `json:"container_id" db:"container_id"`
	Name        string    `json:"name" db:"name"`
	Network     string    `json:"network" db:"network"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Service is a named, host-routed workload backed by one container
type Service struct {
	ID              string        `json:"id" db:"id"`
	Name            string        `json:"name" db:"name"`
	Status          ServiceStatus `json:"status" db:"status"`
	ImageID         string        `json:"image_id" db:"image_id"`
	ProjectID       string        `json:"project_id" db:"project_id"`
	Owner           string        `json:"owner,omitempty" db:"owner"`
	Hosts           StringList    `json:"hosts" db:"hosts"`
	ContainerInfoID *string       `json:"container_info_id,omitempty" db:"container_info_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// EnvSource tells where a stored environment variable came from
type EnvSource string

const (
	// EnvSourceOverride marks a variable supplied by the caller; only these
	// are passed to the runtime when a container is created
	EnvSourceOverride EnvSource = "override"
	// EnvSourceImage marks a variable baked into the running image, recorded
	// on attach and replaced whenever a new container is attached
	EnvSourceImage EnvSource = "image"
)

// EnvironmentVariable is a key/value pair injected into the service container
type EnvironmentVariable struct {
	ID        string    `json:"id" db:"id"`
	ServiceID string    `json:"service_id" db:"service_id"`
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	Source    EnvSource `json:"source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Redirect is a regex redirect rule applied by the proxy in front of a service
type Redirect struct {
	ID          string    `json:"id" db:"id"`
	ServiceID   string    `json:"service_id" db:"service_id"`
	Regex       string    `json:"regex" db:"regex"`
	Replacement string    `json:"replacement" db:"replacement"`
	Permanent   bool      `json:"permanent" db:"permanent"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ParseServiceStatus converts a status name, in any case, into a ServiceStatus
func ParseServiceStatus(s string) (ServiceStatus, bool) {
	status := ServiceStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusPulling, StatusCreated, StatusRunning, StatusStopped, StatusError:
		return status, true
	}
	return "", false
}
