// Package tools defines the Tool interface for LLM agents, including typed
// function adapters and parameter schema reflection. Tools enable agents to
// interact with external systems and APIs in a structured, extensible way.
package tools
