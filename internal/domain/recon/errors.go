package recon

import "fmt"

// Side identifies which input table an error or record refers to.
type Side string

const (
	SideQuery    Side = "query"
	SideTreasury Side = "treasury"
)

// SchemaError reports a configured column that does not exist in the supplied
// table. It is surfaced before matching starts.
type SchemaError struct {
	Side   Side
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table has no column %q", e.Side, e.Column)
}

// ConfigError reports an option combination that would make matching
// meaningless, such as a negative tolerance or one column bound to two roles.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
