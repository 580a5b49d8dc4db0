package report

// TableType is the type marker of a nested script table.
const TableType = "table"

// Script is the result of an NSE script run against a host or port.
type Script struct {
	ID       string          `json:"id"`
	Output   string          `json:"output"`
	Elements []ScriptElement `json:"elements"`
}

// ScriptElement is either an Elem or a Table.
type ScriptElement interface {
	scriptElement()
}

// Elem is a key/value pair of structured script output.
type Elem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Table groups key/value pairs under a key. Tables hold leaf pairs only.
type Table struct {
	Type     string `json:"type"`
	Key      string `json:"key"`
	Elements []Elem `json:"elements"`
}

// NewTable returns an empty table with the given key.
func NewTable(key string) Table {
	return Table{
		Type:     TableType,
		Key:      key,
		Elements: []Elem{},
	}
}

func (Elem) scriptElement()  {}
func (Table) scriptElement() {}
