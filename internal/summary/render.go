package summary

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"
)

// Format selects how a summary is rendered.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatTable, FormatMarkdown}

// Write renders s to w in the given format.
func Write(w io.Writer, s *Summary, format Format) error {
	switch format {
	case FormatTable:
		return WriteTable(w, s)
	case FormatMarkdown:
		return WriteMarkdown(w, s)
	default:
		return fmt.Errorf("unsupported summary format %q (supported: %s, %s)", format, FormatTable, FormatMarkdown)
	}
}

// WriteTable prints a plain-text overview followed by one port table per host.
// Output is assembled in memory and written to w in a single call.
func WriteTable(w io.Writer, s *Summary) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Report: %s\n", s.Source)
	if s.Finished != "" {
		fmt.Fprintf(&buf, "Finished: %s\n", s.Finished)
	}
	if s.Elapsed != "" {
		fmt.Fprintf(&buf, "Elapsed: %ss\n", s.Elapsed)
	}
	fmt.Fprintf(&buf, "Total hosts: %d, Up: %d, Down: %d, Open ports: %d\n\n",
		s.Total, s.Up, s.Down, s.OpenPorts())

	for _, host := range s.Hosts {
		fmt.Fprintf(&buf, "Host: %s (%s)\n", hostLabel(host), host.Status)
		if host.OS != "" {
			fmt.Fprintf(&buf, "OS: %s\n", host.OS)
		}

		if len(host.Ports) == 0 {
			buf.WriteString("No ports found\n\n")
			continue
		}

		table := tablewriter.NewWriter(&buf)
		table.Header("Port", "State", "Service", "Version")
		for _, port := range host.Ports {
			if err := table.Append([]string{port.label(), port.State, port.Service, port.Version}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		buf.WriteByte('\n')
	}

	_, err := buf.WriteTo(w)
	return err
}

// WriteMarkdown renders s as a Markdown document.
func WriteMarkdown(w io.Writer, s *Summary) error {
	md := markdown.NewMarkdown(w)

	md.H1("Scan Summary")
	md.PlainText("")

	rows := [][]string{
		{"Report", "`" + s.Source + "`"},
		{"Total Hosts", strconv.Itoa(s.Total)},
		{"Hosts Up", strconv.Itoa(s.Up)},
		{"Hosts Down", strconv.Itoa(s.Down)},
		{"Open Ports", strconv.Itoa(s.OpenPorts())},
	}
	if s.Finished != "" {
		rows = append(rows, []string{"Finished", s.Finished})
	}
	if s.Elapsed != "" {
		rows = append(rows, []string{"Elapsed", s.Elapsed + "s"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(s.Hosts) == 0 {
		md.H2("Hosts")
		md.PlainText("")
		md.PlainText("No hosts found.")
		md.PlainText("")
		return md.Build()
	}

	for _, host := range s.Hosts {
		writeMarkdownHost(md, host)
	}

	return md.Build()
}

func writeMarkdownHost(md *markdown.Markdown, host Host) {
	md.H2(hostLabel(host))
	md.PlainText("")

	details := []string{"Status: " + host.Status}
	if host.OS != "" {
		details = append(details, "OS: "+host.OS)
	}
	md.BulletList(details...)
	md.PlainText("")

	if len(host.Ports) == 0 {
		md.PlainText("No ports found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(host.Ports))
	for _, port := range host.Ports {
		rows = append(rows, []string{port.label(), port.State, port.Service, port.Version})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Port", "State", "Service", "Version"},
		Rows:   rows,
	})
	md.PlainText("")
}

func hostLabel(h Host) string {
	if h.Hostname == "" {
		return h.Address
	}
	return h.Address + " (" + h.Hostname + ")"
}
