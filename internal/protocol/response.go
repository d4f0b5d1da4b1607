package protocol

// Result of serving one [BuildRequest].
//
// The set of implementations is closed; switch on the concrete type.
type BuildResponse interface {
	Command() Command
	buildResponse()
}

// The request named a language the server does not compile.
type BadLanguage struct{}

// An analyzer referenced by the request changed since the server loaded it.
//
// The client is expected to fall back to compiling in-process.
type BadAnalyzer struct {
	Details string `json:"details"`
}

// The compiler ran. Output is the entire captured output stream.
type Completed struct {
	ReturnCode int    `json:"returnCode"`
	UTF8Output bool   `json:"utf8Output"`
	Output     string `json:"output"`
}

// The request could not be decoded.
type Rejected struct {
	Reason string `json:"reason"`
}

// Acknowledges a shutdown request.
type Shutdown struct {
	ServerPID int `json:"serverPid"`
}

func (BadLanguage) Command() Command { return CmdBadLanguage }
func (BadAnalyzer) Command() Command { return CmdBadAnalyzer }
func (Completed) Command() Command   { return CmdCompleted }
func (Rejected) Command() Command    { return CmdRejected }
func (Shutdown) Command() Command    { return CmdShutdown }

func (BadLanguage) buildResponse() {}
func (BadAnalyzer) buildResponse() {}
func (Completed) buildResponse()   {}
func (Rejected) buildResponse()    {}
func (Shutdown) buildResponse()    {}
