// Package converter turns parsed nmap XML reports into report documents.
//
// Every extractor reads attributes through a get-or-default accessor, so a
// missing attribute becomes "" and a missing optional element leaves its
// section empty. Extraction never fails once the document has been parsed.
package converter

import (
	"time"

	"github.com/anstrom/nmapconv/internal/report"
	"github.com/anstrom/nmapconv/internal/xmltree"
)

// defaultCount is the value of a missing runstats host counter.
const defaultCount = "0"

// Build assembles the report for a parsed document.
func Build(root *xmltree.Node, source string, now time.Time) *report.Report {
	r := &report.Report{
		Hosts: []report.Host{},
		Metadata: report.Metadata{
			Scanner:     report.Scanner,
			ConvertedAt: isoTimestamp(now),
			SourceFile:  source,
		},
	}

	if scaninfo := root.Find("scaninfo"); scaninfo != nil {
		r.ScanInfo = report.Some(parseScanInfo(scaninfo))
	}

	if runstats := root.Find("runstats"); runstats != nil {
		r.Stats = parseRunStats(runstats)
	}

	for _, host := range root.FindAll("host") {
		r.Hosts = append(r.Hosts, parseHost(host))
	}

	return r
}

// isoTimestamp formats t like an ISO 8601 local timestamp without zone,
// dropping the fractional part when it has no microseconds.
func isoTimestamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}

func parseScanInfo(n *xmltree.Node) report.ScanInfo {
	return report.ScanInfo{
		Type:        n.Attr("type", ""),
		Protocol:    n.Attr("protocol", ""),
		NumServices: n.Attr("numservices", ""),
		Services:    n.Attr("services", ""),
	}
}

func parseRunStats(n *xmltree.Node) report.Stats {
	var stats report.Stats

	if finished := n.Find("finished"); finished != nil {
		stats.Finished = &report.Finished{
			Time:    finished.Attr("time", ""),
			TimeStr: finished.Attr("timestr", ""),
			Elapsed: finished.Attr("elapsed", ""),
			Summary: finished.Attr("summary", ""),
			Exit:    finished.Attr("exit", ""),
		}
	}

	if hosts := n.Find("hosts"); hosts != nil {
		stats.Hosts = &report.HostStats{
			Up:    hosts.Attr("up", defaultCount),
			Down:  hosts.Attr("down", defaultCount),
			Total: hosts.Attr("total", defaultCount),
		}
	}

	return stats
}

func parseHost(n *xmltree.Node) report.Host {
	host := report.NewHost()

	for _, addr := range n.FindAll("address") {
		host.Addresses = append(host.Addresses, report.Address{
			Addr:     addr.Attr("addr", ""),
			AddrType: addr.Attr("addrtype", ""),
			Vendor:   addr.Attr("vendor", ""),
		})
	}

	if hostnames := n.Find("hostnames"); hostnames != nil {
		for _, hn := range hostnames.FindAll("hostname") {
			host.Hostnames = append(host.Hostnames, report.Hostname{
				Name: hn.Attr("name", ""),
				Type: hn.Attr("type", ""),
			})
		}
	}

	if status := n.Find("status"); status != nil {
		host.Status = report.Some(report.Status{
			State:     status.Attr("state", ""),
			Reason:    status.Attr("reason", ""),
			ReasonTTL: status.Attr("reason_ttl", ""),
		})
	}

	if ports := n.Find("ports"); ports != nil {
		for _, port := range ports.FindAll("port") {
			host.Ports = append(host.Ports, parsePort(port))
		}
	}

	if osElem := n.Find("os"); osElem != nil {
		host.OS = report.Some(parseOS(osElem))
	}

	if hostscript := n.Find("hostscript"); hostscript != nil {
		for _, script := range hostscript.FindAll("script") {
			host.Scripts = append(host.Scripts, parseScript(script))
		}
	}

	if uptime := n.Find("uptime"); uptime != nil {
		host.Uptime = report.Some(report.Uptime{
			Seconds:  uptime.Attr("seconds", ""),
			LastBoot: uptime.Attr("lastboot", ""),
		})
	}

	return host
}

func parsePort(n *xmltree.Node) report.Port {
	port := report.Port{
		PortID:   n.Attr("portid", ""),
		Protocol: n.Attr("protocol", ""),
		Scripts:  []report.Script{},
	}

	if state := n.Find("state"); state != nil {
		port.State = report.Some(report.State{
			State:     state.Attr("state", ""),
			Reason:    state.Attr("reason", ""),
			ReasonTTL: state.Attr("reason_ttl", ""),
		})
	}

	if service := n.Find("service"); service != nil {
		port.Service = report.Some(report.Service{
			Name:      service.Attr("name", ""),
			Product:   service.Attr("product", ""),
			Version:   service.Attr("version", ""),
			ExtraInfo: service.Attr("extrainfo", ""),
			Method:    service.Attr("method", ""),
			Conf:      service.Attr("conf", ""),
			CPE:       cpeList(service),
		})
	}

	for _, script := range n.FindAll("script") {
		port.Scripts = append(port.Scripts, parseScript(script))
	}

	return port
}

// cpeList collects the non-empty text of n's cpe children in order.
func cpeList(n *xmltree.Node) []string {
	cpes := []string{}
	for _, cpe := range n.FindAll("cpe") {
		if text := cpe.Text(); text != "" {
			cpes = append(cpes, text)
		}
	}
	return cpes
}

// parseScript reads a script element. All elem children come first, then all
// table children, regardless of how they are interleaved in the document.
func parseScript(n *xmltree.Node) report.Script {
	script := report.Script{
		ID:       n.Attr("id", ""),
		Output:   n.Attr("output", ""),
		Elements: []report.ScriptElement{},
	}

	for _, elem := range n.FindAll("elem") {
		script.Elements = append(script.Elements, parseElem(elem))
	}

	for _, table := range n.FindAll("table") {
		script.Elements = append(script.Elements, parseScriptTable(table))
	}

	return script
}

// parseScriptTable reads the direct elem children of a table. Nested tables
// are not descended into.
func parseScriptTable(n *xmltree.Node) report.Table {
	table := report.NewTable(n.Attr("key", ""))
	for _, elem := range n.FindAll("elem") {
		table.Elements = append(table.Elements, parseElem(elem))
	}
	return table
}

func parseElem(n *xmltree.Node) report.Elem {
	return report.Elem{
		Key:   n.Attr("key", ""),
		Value: n.Text(),
	}
}

func parseOS(n *xmltree.Node) report.OS {
	osData := report.OS{
		PortUsed:      []report.PortUsed{},
		OSMatch:       []report.OSMatch{},
		OSFingerprint: []report.OSFingerprint{},
	}

	for _, pu := range n.FindAll("portused") {
		osData.PortUsed = append(osData.PortUsed, report.PortUsed{
			State:  pu.Attr("state", ""),
			Proto:  pu.Attr("proto", ""),
			PortID: pu.Attr("portid", ""),
		})
	}

	for _, m := range n.FindAll("osmatch") {
		match := report.OSMatch{
			Name:     m.Attr("name", ""),
			Accuracy: m.Attr("accuracy", ""),
			Line:     m.Attr("line", ""),
			OSClass:  []report.OSClass{},
		}
		for _, c := range m.FindAll("osclass") {
			match.OSClass = append(match.OSClass, report.OSClass{
				Type:     c.Attr("type", ""),
				Vendor:   c.Attr("vendor", ""),
				OSFamily: c.Attr("osfamily", ""),
				OSGen:    c.Attr("osgen", ""),
				Accuracy: c.Attr("accuracy", ""),
				CPE:      cpeList(c),
			})
		}
		osData.OSMatch = append(osData.OSMatch, match)
	}

	for _, fp := range n.FindAll("osfingerprint") {
		osData.OSFingerprint = append(osData.OSFingerprint, report.OSFingerprint{
			Fingerprint: fp.Attr("fingerprint", ""),
		})
	}

	return osData
}
