// Parses flags and configures logging for the compd build server.
//
// The server accepts the following flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path.
//	-c, --config    Configuration file path.
//
// Flags override build-time defaults set via linker flags and values from the
// configuration file. After parsing, the global logger is reconfigured to
// reflect the final level and verbosity before the server starts.
package cli
