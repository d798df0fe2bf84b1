package toolkit

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseTools(t *testing.T) {
	t.Parallel()

	got := ParseTools(" invoices.create, orders.get ,,")
	want := []string{"invoices.create", "orders.get"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestValidateTools(t *testing.T) {
	t.Parallel()

	if err := ValidateTools([]string{"all", "orders.capture"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ValidateTools([]string{"orders.capture", "orders.refund"})
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "orders.refund") || !strings.Contains(err.Error(), "payments.getRefunds") {
		t.Fatalf("error should name the tool and list accepted tools: %v", err)
	}
}

func TestNewConfiguration_Selected(t *testing.T) {
	t.Parallel()

	cfg := NewConfiguration([]string{"invoices.create", "invoices.list", "orders.get"})
	want := map[string]map[string]bool{
		"invoices": {"create": true, "list": true},
		"orders":   {"get": true},
	}
	if !reflect.DeepEqual(cfg.Actions, want) {
		t.Fatalf("got %v, want %v", cfg.Actions, want)
	}
	if !cfg.Enabled("orders.get") || cfg.Enabled("orders.create") || cfg.Enabled("bogus") {
		t.Fatalf("unexpected Enabled results for %v", cfg.Actions)
	}

	var names []string
	for _, tool := range cfg.EnabledTools() {
		names = append(names, tool.Name)
	}
	if !reflect.DeepEqual(names, []string{"invoices_create", "invoices_list", "orders_get"}) {
		t.Fatalf("unexpected enabled tools %q", names)
	}
}

func TestNewConfiguration_All(t *testing.T) {
	t.Parallel()

	cfg := NewConfiguration([]string{"orders.get", "all"})
	if got, want := len(cfg.EnabledTools()), len(AcceptedTools()); got != want {
		t.Fatalf("expected all %d tools enabled, got %d", want, got)
	}
	if !cfg.Actions["subscriptionPlans"]["show"] {
		t.Fatalf("subscriptionPlans.show should be enabled")
	}
}

func TestCatalog_Schemas(t *testing.T) {
	t.Parallel()

	if n := len(AcceptedTools()); n != 28 {
		t.Fatalf("expected 28 accepted tools, got %d", n)
	}

	get, ok := Lookup("invoices.get")
	if !ok {
		t.Fatal("invoices.get missing")
	}
	if get.InputSchema.Type != "object" {
		t.Fatalf("unexpected schema type %q", get.InputSchema.Type)
	}
	if p, ok := get.InputSchema.Properties["invoice_id"]; !ok || p.Type != "string" {
		t.Fatalf("invoice_id property missing: %+v", get.InputSchema.Properties)
	}
	if !reflect.DeepEqual(get.InputSchema.Required, []string{"invoice_id"}) {
		t.Fatalf("unexpected required %v", get.InputSchema.Required)
	}

	list, _ := Lookup("invoices.list")
	if len(list.InputSchema.Required) != 0 {
		t.Fatalf("list arguments should be optional: %v", list.InputSchema.Required)
	}

	disputes, _ := Lookup("disputes.list")
	if len(disputes.InputSchema.Properties["dispute_state"].Enum) == 0 {
		t.Fatalf("dispute_state should carry an enum")
	}

	update, _ := Lookup("products.update")
	if body := update.InputSchema.Properties["body"]; body.Type != "array" || body.Items == nil {
		t.Fatalf("products.update body should be an array: %+v", body)
	}
}
