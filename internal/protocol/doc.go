// Package protocol defines the messages exchanged between compiler clients
// and the build server.
//
// A client sends one [BuildRequest] (or a shutdown request) per connection
// and receives exactly one [BuildResponse]. Responses form a closed set:
// [BadLanguage], [BadAnalyzer], [Completed], [Rejected], and [Shutdown].
//
// On the wire each message is a single newline-terminated JSON envelope
// carrying a command name and a payload:
//
//	{"command":"build","payload":{"language":"csharp","currentDirectory":"/src","arguments":["a.cs"]}}
//	{"command":"completed","payload":{"returnCode":0,"utf8Output":false,"output":""}}
//
// Keep-alive suggestions travel in [BuildRequest.KeepAlive] as a decimal
// number of seconds and are interpreted by [ParseKeepAlive].
package protocol
