package toolkit

import (
	"net/http"
	"strings"

	"github.com/ggoodman/paypal-mcp-server-go/mcp"
)

// Tool describes one PayPal operation exposed as an MCP tool. The embedded
// mcp.Tool is what tools/list advertises.
type Tool struct {
	// ID is the "<product>.<action>" identifier used on the command line.
	ID string `json:"-"`
	mcp.Tool

	method string
	path   string
	args   argSpec
}

// Product returns the product half of the identifier ("invoices").
func (t Tool) Product() string {
	p, _, _ := strings.Cut(t.ID, ".")
	return p
}

// Action returns the action half of the identifier ("create").
func (t Tool) Action() string {
	_, a, _ := strings.Cut(t.ID, ".")
	return a
}

type payload = map[string]any

type bodyArgs struct {
	Body payload `json:"body" jsonschema:"description=Request payload forwarded to the PayPal API as JSON"`
}

type pageArgs struct {
	Page     int `json:"page,omitempty" jsonschema:"description=Page number starting at 1"`
	PageSize int `json:"page_size,omitempty" jsonschema:"description=Number of items per page"`
}

type invoiceArgs struct {
	InvoiceID string `json:"invoice_id" jsonschema:"description=PayPal invoice ID"`
}

type invoiceActionArgs struct {
	InvoiceID string  `json:"invoice_id" jsonschema:"description=PayPal invoice ID"`
	Body      payload `json:"body,omitempty" jsonschema:"description=Optional request payload"`
}

type orderArgs struct {
	OrderID string `json:"order_id" jsonschema:"description=PayPal order ID"`
}

type orderCaptureArgs struct {
	OrderID string  `json:"order_id" jsonschema:"description=PayPal order ID"`
	Body    payload `json:"body,omitempty" jsonschema:"description=Optional capture payload"`
}

type disputeListArgs struct {
	DisputeState string `json:"dispute_state,omitempty" jsonschema:"description=Filter by dispute state,enum=REQUIRED_ACTION,enum=REQUIRED_OTHER_PARTY_ACTION,enum=UNDER_PAYPAL_REVIEW,enum=RESOLVED,enum=OPEN_INQUIRIES,enum=APPEALABLE"`
	PageSize     int    `json:"page_size,omitempty" jsonschema:"description=Number of disputes per page"`
}

type disputeArgs struct {
	DisputeID string `json:"dispute_id" jsonschema:"description=PayPal dispute ID"`
}

type disputeAcceptArgs struct {
	DisputeID string  `json:"dispute_id" jsonschema:"description=PayPal dispute ID"`
	Body      payload `json:"body,omitempty" jsonschema:"description=Optional note and refund details"`
}

type trackerArgs struct {
	TrackerID string `json:"tracker_id" jsonschema:"description=Tracker ID in the form <transaction_id>-<tracking_number>"`
}

type productArgs struct {
	ProductID string `json:"product_id" jsonschema:"description=Catalog product ID"`
}

type productPatchArgs struct {
	ProductID string    `json:"product_id" jsonschema:"description=Catalog product ID"`
	Body      []payload `json:"body" jsonschema:"description=JSON Patch operations"`
}

type planListArgs struct {
	ProductID string `json:"product_id,omitempty" jsonschema:"description=Only list plans of this product"`
	Page      int    `json:"page,omitempty" jsonschema:"description=Page number starting at 1"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"description=Number of plans per page"`
}

type planArgs struct {
	PlanID string `json:"plan_id" jsonschema:"description=Billing plan ID"`
}

type subscriptionArgs struct {
	SubscriptionID string `json:"subscription_id" jsonschema:"description=Subscription ID"`
}

type subscriptionCancelArgs struct {
	SubscriptionID string  `json:"subscription_id" jsonschema:"description=Subscription ID"`
	Body           payload `json:"body" jsonschema:"description=Cancellation payload containing a reason"`
}

type transactionListArgs struct {
	StartDate     string `json:"start_date" jsonschema:"description=Start of the range in RFC 3339 format"`
	EndDate       string `json:"end_date" jsonschema:"description=End of the range in RFC 3339 format (at most 31 days after start_date)"`
	TransactionID string `json:"transaction_id,omitempty" jsonschema:"description=Filter by transaction ID"`
	Page          int    `json:"page,omitempty" jsonschema:"description=Page number starting at 1"`
	PageSize      int    `json:"page_size,omitempty" jsonschema:"description=Number of transactions per page"`
}

type refundCreateArgs struct {
	CaptureID string  `json:"capture_id" jsonschema:"description=ID of the captured payment to refund"`
	Body      payload `json:"body,omitempty" jsonschema:"description=Optional amount and note; omit for a full refund"`
}

type refundArgs struct {
	RefundID string `json:"refund_id" jsonschema:"description=Refund ID"`
}

func newTool(id, description, method, path string, args argSpec) Tool {
	return Tool{
		ID: id,
		Tool: mcp.Tool{
			Name:        strings.ReplaceAll(id, ".", "_"),
			Description: description,
			InputSchema: args.schema,
		},
		method: method,
		path:   path,
		args:   args,
	}
}

// catalog lists every supported operation in the order they are advertised.
var catalog = []Tool{
	newTool("invoices.create", "Create a draft invoice.", http.MethodPost, "/v2/invoicing/invoices", argsOf[bodyArgs]()),
	newTool("invoices.list", "List invoices.", http.MethodGet, "/v2/invoicing/invoices", argsOf[pageArgs]()),
	newTool("invoices.get", "Show the details of an invoice.", http.MethodGet, "/v2/invoicing/invoices/{invoice_id}", argsOf[invoiceArgs]()),
	newTool("invoices.send", "Send an invoice to its recipients.", http.MethodPost, "/v2/invoicing/invoices/{invoice_id}/send", argsOf[invoiceActionArgs]()),
	newTool("invoices.sendReminder", "Send a reminder for an outstanding invoice.", http.MethodPost, "/v2/invoicing/invoices/{invoice_id}/remind", argsOf[invoiceActionArgs]()),
	newTool("invoices.cancel", "Cancel a sent invoice.", http.MethodPost, "/v2/invoicing/invoices/{invoice_id}/cancel", argsOf[invoiceActionArgs]()),
	newTool("invoices.generateQRC", "Generate a QR code for an invoice.", http.MethodPost, "/v2/invoicing/invoices/{invoice_id}/generate-qr-code", argsOf[invoiceActionArgs]()),
	newTool("orders.create", "Create an order.", http.MethodPost, "/v2/checkout/orders", argsOf[bodyArgs]()),
	newTool("orders.get", "Show the details of an order.", http.MethodGet, "/v2/checkout/orders/{order_id}", argsOf[orderArgs]()),
	newTool("orders.capture", "Capture payment for an approved order.", http.MethodPost, "/v2/checkout/orders/{order_id}/capture", argsOf[orderCaptureArgs]()),
	newTool("disputes.list", "List disputes.", http.MethodGet, "/v1/customer/disputes", argsOf[disputeListArgs]()),
	newTool("disputes.get", "Show the details of a dispute.", http.MethodGet, "/v1/customer/disputes/{dispute_id}", argsOf[disputeArgs]()),
	newTool("disputes.create", "Accept the customer's claim on a dispute.", http.MethodPost, "/v1/customer/disputes/{dispute_id}/accept-claim", argsOf[disputeAcceptArgs]()),
	newTool("shipment.create", "Add shipment tracking information to a transaction.", http.MethodPost, "/v1/shipping/trackers", argsOf[bodyArgs]()),
	newTool("shipment.get", "Show shipment tracking information.", http.MethodGet, "/v1/shipping/trackers/{tracker_id}", argsOf[trackerArgs]()),
	newTool("products.create", "Create a catalog product.", http.MethodPost, "/v1/catalogs/products", argsOf[bodyArgs]()),
	newTool("products.list", "List catalog products.", http.MethodGet, "/v1/catalogs/products", argsOf[pageArgs]()),
	newTool("products.update", "Update a catalog product with JSON Patch operations.", http.MethodPatch, "/v1/catalogs/products/{product_id}", argsOf[productPatchArgs]()),
	newTool("products.show", "Show the details of a catalog product.", http.MethodGet, "/v1/catalogs/products/{product_id}", argsOf[productArgs]()),
	newTool("subscriptionPlans.create", "Create a billing plan.", http.MethodPost, "/v1/billing/plans", argsOf[bodyArgs]()),
	newTool("subscriptionPlans.list", "List billing plans.", http.MethodGet, "/v1/billing/plans", argsOf[planListArgs]()),
	newTool("subscriptionPlans.show", "Show the details of a billing plan.", http.MethodGet, "/v1/billing/plans/{plan_id}", argsOf[planArgs]()),
	newTool("subscriptions.create", "Create a subscription.", http.MethodPost, "/v1/billing/subscriptions", argsOf[bodyArgs]()),
	newTool("subscriptions.show", "Show the details of a subscription.", http.MethodGet, "/v1/billing/subscriptions/{subscription_id}", argsOf[subscriptionArgs]()),
	newTool("subscriptions.cancel", "Cancel a subscription.", http.MethodPost, "/v1/billing/subscriptions/{subscription_id}/cancel", argsOf[subscriptionCancelArgs]()),
	newTool("transactions.list", "List transactions within a date range.", http.MethodGet, "/v1/reporting/transactions", argsOf[transactionListArgs]()),
	newTool("payments.createRefund", "Refund a captured payment.", http.MethodPost, "/v2/payments/captures/{capture_id}/refund", argsOf[refundCreateArgs]()),
	newTool("payments.getRefunds", "Show the details of a refund.", http.MethodGet, "/v2/payments/refunds/{refund_id}", argsOf[refundArgs]()),
}

// Catalog returns every supported operation.
func Catalog() []Tool {
	return append([]Tool(nil), catalog...)
}

// AcceptedTools returns the identifiers of every supported operation.
func AcceptedTools() []string {
	ids := make([]string, len(catalog))
	for i, t := range catalog {
		ids[i] = t.ID
	}
	return ids
}

// Lookup finds an operation by identifier.
func Lookup(id string) (Tool, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}
