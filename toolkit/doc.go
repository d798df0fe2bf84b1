// Package toolkit describes the PayPal operations the server can expose as
// MCP tools and executes them against the PayPal REST API.
//
// Every operation has a stable identifier of the form "<product>.<action>"
// (for example "invoices.create"). A Configuration built from a list of
// identifiers, or the special value "all", selects which operations a Client
// advertises. The advertised MCP tool name replaces the dot with an
// underscore ("invoices_create").
//
// Tool arguments are JSON objects. Path parameters (invoice_id, order_id, ...)
// are substituted into the endpoint path, an optional "body" member is
// forwarded verbatim as the request payload and any remaining members become
// query parameters.
package toolkit
