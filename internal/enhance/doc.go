// Package enhance is a client for OpenAI-compatible chat-completion APIs used
// to improve, summarize and translate documentation pages.
//
// Every call is bounded by the caller's context and by a client-wide request
// rate. Replies are returned as Markdown with any surrounding code fence
// removed.
package enhance
