// Package provisioning implements the spawn-and-identify workflow for
// new agent hosts and its durable record log.
package provisioning

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Status tracks how far a provisioning attempt got.
type Status string

const (
	// StatusCreated means the instance exists but has no known address.
	StatusCreated Status = "created"
	// StatusAddressed means the instance has a public address but its
	// identity was not read.
	StatusAddressed Status = "addressed"
	// StatusIdentified means the hardware UUID was read successfully.
	StatusIdentified Status = "identified"
	// StatusIdentityFetchFailed means the remote identity read failed;
	// the record carries the failure sentinel for manual follow-up.
	StatusIdentityFetchFailed Status = "identity-fetch-failed"
)

// IdentityFailureSentinel replaces the hardware UUID in records whose
// identity read failed. Downstream tooling greps for it.
const IdentityFailureSentinel = "IDENTITY FETCH FAILURE"

// RecordSeparator terminates every record in the log.
const RecordSeparator = "-x-x-"

// Record captures the outcome of one provisioning attempt. Fields fill
// in as the workflow progresses; absent fields stay empty.
type Record struct {
	InstanceID    string
	PublicAddress string
	HardwareUUID  string
	Status        Status
	Timestamp     time.Time
}

// Log is the append-only provisioning audit trail. One writer per
// invocation; records are never mutated or deleted.
type Log struct {
	Path string
}

// Append writes rec as one record: the fields that were obtained, one
// per line in order instance ID / public address / identity, then the
// separator line. Exactly one Append happens per provisioning run.
func (l *Log) Append(rec *Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	var b strings.Builder
	if rec.InstanceID != "" {
		b.WriteString(rec.InstanceID + "\n")
	}
	if rec.PublicAddress != "" {
		b.WriteString(rec.PublicAddress + "\n")
	}
	if rec.HardwareUUID != "" {
		b.WriteString(rec.HardwareUUID + "\n")
	}
	b.WriteString(RecordSeparator + "\n")

	// #nosec G304
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open provisioning log %s: %w", l.Path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append provisioning record: %w", err)
	}
	return nil
}
