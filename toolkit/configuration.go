package toolkit

import (
	"errors"
	"fmt"
	"strings"
)

// AllTools selects every supported operation.
const AllTools = "all"

// ErrUnknownTool is returned when a tool identifier is not in the catalog.
var ErrUnknownTool = errors.New("invalid tool")

// Configuration records which operations are enabled, keyed by product and
// then action, plus the context shared by every call.
type Configuration struct {
	Actions map[string]map[string]bool `json:"actions"`
	Context *Context                   `json:"context,omitempty"`
}

// Context is shared by every PayPal call.
type Context struct {
	Sandbox bool `json:"sandbox"`
}

// ParseTools splits a comma separated tool list, trimming whitespace and
// dropping empty entries.
func ParseTools(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateTools checks every identifier against the catalog. AllTools is
// always accepted.
func ValidateTools(ids []string) error {
	for _, id := range ids {
		if id == AllTools {
			continue
		}
		if _, ok := Lookup(id); !ok {
			return fmt.Errorf("%w: %s. Accepted tools are: %s", ErrUnknownTool, id, strings.Join(AcceptedTools(), ", "))
		}
	}
	return nil
}

// NewConfiguration enables the given operations. If ids contains AllTools
// every operation is enabled. Unknown identifiers are ignored; use
// ValidateTools first to reject them.
func NewConfiguration(ids []string) Configuration {
	cfg := Configuration{Actions: map[string]map[string]bool{}}
	selected := ids
	for _, id := range ids {
		if id == AllTools {
			selected = AcceptedTools()
			break
		}
	}
	for _, id := range selected {
		t, ok := Lookup(id)
		if !ok {
			continue
		}
		if cfg.Actions[t.Product()] == nil {
			cfg.Actions[t.Product()] = map[string]bool{}
		}
		cfg.Actions[t.Product()][t.Action()] = true
	}
	return cfg
}

// Enabled reports whether the operation with the given identifier is enabled.
func (c Configuration) Enabled(id string) bool {
	product, action, ok := strings.Cut(id, ".")
	if !ok {
		return false
	}
	return c.Actions[product][action]
}

// EnabledTools returns the enabled operations in catalog order.
func (c Configuration) EnabledTools() []Tool {
	var out []Tool
	for _, t := range catalog {
		if c.Enabled(t.ID) {
			out = append(out, t)
		}
	}
	return out
}
