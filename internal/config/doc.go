// Package config loads the compiler server's runtime configuration.
//
// Configuration is a YAML document. Every field is optional; missing fields
// take the defaults below. Command-line flags override file values.
//
//	socket: /run/user/1000/compd/compd.sock
//	keepAlive: 10m        # or "infinite"
//	gcDelay: 30s
//	sdkDirectory: /usr/lib/dotnet/sdk/8.0.100
//	compilers:
//	  csharp:
//	    path: /usr/lib/dotnet/sdk/8.0.100/Roslyn/bincore/csc
//	  visualbasic:
//	    path: vbc
//	    args: ["-nologo"]
package config
