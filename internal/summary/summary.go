// Package summary renders a human-readable overview of an nmap XML report.
//
// Unlike the converter, which preserves every attribute of the document, the
// summary decodes the report with the typed nmap model and keeps only what an
// operator needs at a glance: host state, open ports and the best OS guess.
package summary

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Ullaakut/nmap/v3"

	"github.com/anstrom/nmapconv/internal/errors"
)

// Summary is a condensed view of a scan report.
type Summary struct {
	// Source is the path of the XML report
	Source string
	// Finished is the human-readable completion time, if recorded
	Finished string
	// Elapsed is the scan duration in seconds, if recorded
	Elapsed string
	// Up is the number of hosts reported up
	Up int
	// Down is the number of hosts reported down
	Down int
	// Total is the number of hosts scanned
	Total int
	// Hosts lists every host with at least one address
	Hosts []Host
}

// Host is a scanned host and its ports.
type Host struct {
	Address  string
	Hostname string
	Status   string
	// OS is the highest-accuracy OS match, formatted as "name (accuracy%)"
	OS    string
	Ports []Port
}

// Port is a single scanned port.
type Port struct {
	Number   uint16
	Protocol string
	State    string
	Service  string
	// Version joins the detected product and version
	Version string
}

// Load reads and summarises the report at path.
func Load(path string) (*Summary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.ErrFileNotFound(path, err)
	}
	if info.IsDir() {
		return nil, errors.ErrFileNotFound(path, fmt.Errorf("%s is a directory", path))
	}

	content, err := os.ReadFile(path) //nolint:gosec // path is the operator's input document
	if err != nil {
		return nil, errors.ErrFileNotFound(path, err)
	}

	run := &nmap.Run{}
	if err := nmap.Parse(content, run); err != nil {
		return nil, errors.ErrParse(path, err)
	}

	return FromRun(run, path), nil
}

// FromRun converts a decoded nmap run into a Summary.
func FromRun(run *nmap.Run, source string) *Summary {
	s := &Summary{
		Source: source,
		Up:     run.Stats.Hosts.Up,
		Down:   run.Stats.Hosts.Down,
		Total:  run.Stats.Hosts.Total,
		Hosts:  make([]Host, 0, len(run.Hosts)),
	}

	s.Finished = run.Stats.Finished.TimeStr
	if elapsed := fmt.Sprint(run.Stats.Finished.Elapsed); elapsed != "0" {
		s.Elapsed = elapsed
	}

	for i := range run.Hosts {
		if host := convertHost(&run.Hosts[i]); host != nil {
			s.Hosts = append(s.Hosts, *host)
		}
	}

	return s
}

func convertHost(h *nmap.Host) *Host {
	if len(h.Addresses) == 0 {
		return nil
	}

	host := &Host{
		Address: h.Addresses[0].Addr,
		Status:  h.Status.State,
		Ports:   make([]Port, 0, len(h.Ports)),
	}

	if len(h.Hostnames) > 0 {
		host.Hostname = h.Hostnames[0].Name
	}

	if len(h.OS.Matches) > 0 {
		best := h.OS.Matches[0]
		host.OS = fmt.Sprintf("%s (%s%%)", best.Name, fmt.Sprint(best.Accuracy))
	}

	for j := range h.Ports {
		p := &h.Ports[j]
		host.Ports = append(host.Ports, Port{
			Number:   p.ID,
			Protocol: p.Protocol,
			State:    p.State.State,
			Service:  p.Service.Name,
			Version:  joinVersion(p.Service.Product, p.Service.Version),
		})
	}

	return host
}

func joinVersion(product, version string) string {
	switch {
	case product == "":
		return version
	case version == "":
		return product
	default:
		return product + " " + version
	}
}

// OpenPorts returns the number of ports in the open state across all hosts.
func (s *Summary) OpenPorts() int {
	count := 0
	for _, h := range s.Hosts {
		for _, p := range h.Ports {
			if p.State == "open" {
				count++
			}
		}
	}
	return count
}

func (p Port) label() string {
	return strconv.Itoa(int(p.Number)) + "/" + p.Protocol
}
