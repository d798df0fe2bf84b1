// Package mcp contains the Model Context Protocol data types and constants
// the server exchanges with its client. It mirrors the wire representation of
// the protocol while keeping the surface Go-friendly: exported structs with
// json tags and string constants for method names.
//
// The package is free of transport logic. The stdio transport frames these
// values; package mcpserver builds them and hands them to the transport for
// serialization.
//
// # Method Names
//
// JSON-RPC method and notification names are enumerated as Method constants
// (e.g. ToolsListMethod). Only the methods this server answers are listed.
//
// # Tools
//
// Tool and ToolInputSchema describe a callable tool. Input schemas use the
// simplified SchemaProperty node rather than full JSON Schema:
//
//	tool := mcp.Tool{
//	    Name: "orders_get",
//	    InputSchema: mcp.ToolInputSchema{
//	        Type:       "object",
//	        Properties: map[string]mcp.SchemaProperty{"order_id": {Type: "string"}},
//	        Required:   []string{"order_id"},
//	    },
//	}
//
// Example (tool result construction):
//
//	res := mcp.TextResult("hello", false)
//
// # Compatibility
//
// LatestProtocolVersion is the most recent protocol date the server targets.
// SupportedProtocolVersions lists every revision it accepts during
// initialize, newest first.
package mcp
