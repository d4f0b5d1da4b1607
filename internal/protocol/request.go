package protocol

// Command names carried in message envelopes.
type Command string

const (
	CmdBuild       Command = "build"       // Client asks for a compilation.
	CmdShutdown    Command = "shutdown"    // Client asks the server to exit; also the reply.
	CmdCompleted   Command = "completed"   // Compilation ran to completion.
	CmdBadLanguage Command = "badLanguage" // Requested language is not served.
	CmdBadAnalyzer Command = "badAnalyzer" // Analyzer integrity check failed.
	CmdRejected    Command = "rejected"    // Request could not be understood.
)

// One compiler invocation requested by a client.
//
// Requests are immutable once decoded; the server never modifies them.
type BuildRequest struct {
	Language         string   `json:"language"`            // Language tag selecting the compiler (e.g., "csharp").
	CurrentDirectory string   `json:"currentDirectory"`    // Working directory of the client invocation.
	LibraryDirectory string   `json:"libraryDirectory"`    // Library search path (LIB) of the client.
	Arguments        []string `json:"arguments"`           // Compiler argument vector.
	KeepAlive        string   `json:"keepAlive,omitempty"` // Suggested keep-alive in seconds; see [ParseKeepAlive].
}
