package xmltree

import (
	"encoding/xml"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/nmapconv/internal/errors"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE nmaprun>
<?xml-stylesheet href="file:///usr/share/nmap/nmap.xsl" type="text/xsl"?>
<!-- Nmap 7.94 scan -->
<nmaprun scanner="nmap" args="nmap -sV 10.0.0.1">
  <scaninfo type="syn" protocol="tcp"/>
  <host>
    <address addr="10.0.0.1" addrtype="ipv4"/>
    <address addr="00:11:22:33:44:55" addrtype="mac" vendor="Acme"/>
  </host>
  <host><address addr="10.0.0.2" addrtype="ipv4"/></host>
</nmaprun>
`

func TestParse(t *testing.T) {
	root, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "nmaprun", root.Name())
	assert.Equal(t, "nmap", root.Attr("scanner", ""))
	assert.Equal(t, "fallback", root.Attr("missing", "fallback"))

	hosts := root.FindAll("host")
	require.Len(t, hosts, 2)

	addrs := hosts[0].FindAll("address")
	require.Len(t, addrs, 2)
	assert.Equal(t, "10.0.0.1", addrs[0].Attr("addr", ""))
	assert.Equal(t, "Acme", addrs[1].Attr("vendor", ""))
	assert.Equal(t, "", addrs[0].Attr("vendor", ""))

	assert.Equal(t, "syn", root.Find("scaninfo").Attr("type", ""))
	assert.Nil(t, root.Find("runstats"))
	assert.Empty(t, root.FindAll("runstats"))
	assert.Len(t, root.Children(), 3)
}

func TestParseNamespaces(t *testing.T) {
	root, err := Parse(strings.NewReader(
		`<nmaprun xmlns="urn:x" xmlns:p="urn:p" p:scanner="other" scanner="nmap"><host/><p:host/></nmaprun>`))
	require.NoError(t, err)

	assert.Equal(t, "{urn:x}nmaprun", root.Name())
	assert.Equal(t, "nmap", root.Attr("scanner", ""))
	assert.Nil(t, root.Find("host"))
	assert.Empty(t, root.FindAll("host"))
	assert.NotNil(t, root.Find("{urn:x}host"))
	assert.NotNil(t, root.Find("{urn:p}host"))
}

func TestParseText(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected string
	}{
		{"simple text", `<cpe>cpe:/a:openbsd:openssh:8.9</cpe>`, "cpe:/a:openbsd:openssh:8.9"},
		{"empty element", `<elem key="x"/>`, ""},
		{"whitespace kept", `<elem>  </elem>`, "  "},
		{"entities decoded", `<elem>a &amp; b &lt;c&gt;&#xa;</elem>`, "a & b <c>\n"},
		{"cdata", `<elem><![CDATA[<raw>]]></elem>`, "<raw>"},
		{"text before first child only", `<elem>head<child/>tail</elem>`, "head"},
		{"comment does not split text", `<elem>a<!-- c -->b</elem>`, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(strings.NewReader(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, root.Text())
		})
	}
}

func TestParseDeclaredCharset(t *testing.T) {
	// "caf\xe9" is "café" in ISO-8859-1.
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<nmaprun><host comment=\"caf\xe9\"/></nmaprun>"

	root, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "café", root.Find("host").Attr("comment", ""))
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"whitespace only", "  \n "},
		{"plain text", "invalid xml content"},
		{"unclosed root", "<nmaprun>"},
		{"truncated tag", "<nmaprun><host>incomplete</host"},
		{"mismatched tags", "<nmaprun><host></port></nmaprun>"},
		{"two roots", "<nmaprun/><nmaprun/>"},
		{"trailing text", "<nmaprun/>junk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			var syntaxErr *xml.SyntaxError
			assert.True(t, stderrors.As(err, &syntaxErr), "expected xml.SyntaxError, got %T: %v", err, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scan.xml")
		require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

		root, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, root.FindAll("host"), 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nonexistent.xml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeFileNotFound))
		assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeFileNotFound))
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.xml")
		require.NoError(t, os.WriteFile(path, []byte("<nmaprun><host>"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeParse))
		assert.Contains(t, err.Error(), "unexpected EOF")
	})
}
