package mcpserver

import "log/slog"

// Option customizes a Server.
type Option func(*Server)

// WithServerInfo sets the name and version reported during initialize.
func WithServerInfo(name, version string) Option {
	return func(s *Server) {
		if name != "" {
			s.info.Name = name
		}
		if version != "" {
			s.info.Version = version
		}
	}
}

// WithInstructions sets the instructions returned from initialize.
func WithInstructions(text string) Option {
	return func(s *Server) { s.instructions = text }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.l = l
		}
	}
}

// WithProtocolVersions restricts the MCP revisions the server accepts. The
// first entry is used when the client asks for an unsupported revision.
func WithProtocolVersions(versions ...string) Option {
	return func(s *Server) {
		if len(versions) > 0 {
			s.versions = append([]string(nil), versions...)
		}
	}
}
