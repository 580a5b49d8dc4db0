// Package report defines the JSON document produced from an nmap XML report
// and the encoder that writes it.
//
// Field order in the structs is the key order of compact output. Sections that
// come from optional XML elements are wrapped in Optional, which encodes as an
// empty object when the element was absent.
package report

import (
	"bytes"
	"encoding/json"
)

// Scanner is the fixed scanner name recorded in report metadata.
const Scanner = "nmap"

var emptyObject = []byte("{}")

// Optional holds a section that is only populated when its source element exists.
// A nil Value encodes as {}.
type Optional[T any] struct {
	Value *T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: &v}
}

// Present reports whether the section was populated.
func (o Optional[T]) Present() bool {
	return o.Value != nil
}

// MarshalJSON implements json.Marshaler.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return emptyObject, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(o.Value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Report is the root of the converted document.
type Report struct {
	ScanInfo Optional[ScanInfo] `json:"scan_info"`
	Hosts    []Host             `json:"hosts"`
	Stats    Stats              `json:"stats"`
	Metadata Metadata           `json:"metadata"`
}

// ScanInfo describes the scan parameters.
type ScanInfo struct {
	Type        string `json:"type"`
	Protocol    string `json:"protocol"`
	NumServices string `json:"numservices"`
	Services    string `json:"services"`
}

// Stats holds run statistics. Each part is present only when nmap wrote it.
type Stats struct {
	Finished *Finished  `json:"finished,omitempty"`
	Hosts    *HostStats `json:"hosts,omitempty"`
}

// Finished describes how and when the scan ended.
type Finished struct {
	Time    string `json:"time"`
	TimeStr string `json:"timestr"`
	Elapsed string `json:"elapsed"`
	Summary string `json:"summary"`
	Exit    string `json:"exit"`
}

// HostStats counts hosts by state. Missing counts are "0".
type HostStats struct {
	Up    string `json:"up"`
	Down  string `json:"down"`
	Total string `json:"total"`
}

// Metadata records where and when the document was produced.
type Metadata struct {
	Scanner     string `json:"scanner"`
	ConvertedAt string `json:"converted_at"`
	SourceFile  string `json:"source_file"`
}

// Host is one scanned target.
type Host struct {
	Addresses []Address          `json:"addresses"`
	Hostnames []Hostname         `json:"hostnames"`
	Status    Optional[Status]   `json:"status"`
	Ports     []Port             `json:"ports"`
	OS        Optional[OS]       `json:"os"`
	Scripts   []Script           `json:"scripts"`
	Uptime    Optional[Uptime]   `json:"uptime"`
	Trace     Optional[struct{}] `json:"trace"`
}

// NewHost returns a host with all sequences initialised.
func NewHost() Host {
	return Host{
		Addresses: []Address{},
		Hostnames: []Hostname{},
		Ports:     []Port{},
		Scripts:   []Script{},
	}
}

// Address is an IP or MAC address of a host.
type Address struct {
	Addr     string `json:"addr"`
	AddrType string `json:"addrtype"`
	Vendor   string `json:"vendor"`
}

// Hostname is a name resolved for a host.
type Hostname struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Status is the host state and the reason for it.
type Status struct {
	State     string `json:"state"`
	Reason    string `json:"reason"`
	ReasonTTL string `json:"reason_ttl"`
}

// Uptime is the uptime guess for a host.
type Uptime struct {
	Seconds  string `json:"seconds"`
	LastBoot string `json:"lastboot"`
}

// Port is one examined port.
type Port struct {
	PortID   string            `json:"portid"`
	Protocol string            `json:"protocol"`
	State    Optional[State]   `json:"state"`
	Service  Optional[Service] `json:"service"`
	Scripts  []Script          `json:"scripts"`
}

// State is the port state and the reason for it.
type State struct {
	State     string `json:"state"`
	Reason    string `json:"reason"`
	ReasonTTL string `json:"reason_ttl"`
}

// Service is the service detected on a port.
type Service struct {
	Name      string   `json:"name"`
	Product   string   `json:"product"`
	Version   string   `json:"version"`
	ExtraInfo string   `json:"extrainfo"`
	Method    string   `json:"method"`
	Conf      string   `json:"conf"`
	CPE       []string `json:"cpe"`
}

// OS holds the OS detection results for a host.
type OS struct {
	PortUsed      []PortUsed      `json:"portused"`
	OSMatch       []OSMatch       `json:"osmatch"`
	OSFingerprint []OSFingerprint `json:"osfingerprint"`
}

// PortUsed is a port nmap relied on for OS detection.
type PortUsed struct {
	State  string `json:"state"`
	Proto  string `json:"proto"`
	PortID string `json:"portid"`
}

// OSMatch is one candidate operating system.
type OSMatch struct {
	Name     string    `json:"name"`
	Accuracy string    `json:"accuracy"`
	Line     string    `json:"line"`
	OSClass  []OSClass `json:"osclass"`
}

// OSClass classifies an OS match.
type OSClass struct {
	Type     string   `json:"type"`
	Vendor   string   `json:"vendor"`
	OSFamily string   `json:"osfamily"`
	OSGen    string   `json:"osgen"`
	Accuracy string   `json:"accuracy"`
	CPE      []string `json:"cpe"`
}

// OSFingerprint is a raw OS fingerprint.
type OSFingerprint struct {
	Fingerprint string `json:"fingerprint"`
}
