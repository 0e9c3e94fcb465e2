package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsLLMMessagesSent is base for counter metric for total messages sent to LLM
	StatsLLMMessagesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_messages_sent",
		Help:         "stats_llm_messages_sent provides total messages sent to LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMInputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_input_tokens",
		Help:         "stats_llm_input_tokens provides total input tokens sent to LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMOutputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_output_tokens",
		Help:         "stats_llm_output_tokens provides total output tokens received from LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMTotalTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_total_tokens",
		Help:         "stats_llm_total_tokens provides total tokens sent and received from LLM",
		RequiredTags: []string{"model"},
	}

	StatsAgentCallsSucceeded = metrics.Describe{
		Type: metrics.TypeCounter,
		Name: "stats_agent_calls_succeeded",
		Help: "stats_agent_calls_succeeded provides total agent calls succeeded",
	}

	StatsAgentCallsFailed = metrics.Describe{
		Type: metrics.TypeCounter,
		Name: "stats_agent_calls_failed",
		Help: "stats_agent_calls_failed provides total agent calls failed",
	}

	StatsAgentMaxIterations = metrics.Describe{
		Type: metrics.TypeCounter,
		Name: "stats_agent_max_iterations",
		Help: "stats_agent_max_iterations provides total agent calls stopped at the iteration cap",
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool", "origin"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool", "origin"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsToolSearches = metrics.Describe{
		Type: metrics.TypeCounter,
		Name: "stats_tool_searches",
		Help: "stats_tool_searches provides total tool discovery searches",
	}

	StatsToolsAutoLoaded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tools_auto_loaded",
		Help:         "stats_tools_auto_loaded provides total tools auto-loaded by search",
		RequiredTags: []string{"mode"},
	}

	StatsEmbeddingsFailed = metrics.Describe{
		Type: metrics.TypeCounter,
		Name: "stats_embeddings_failed",
		Help: "stats_embeddings_failed provides total failed embedding computations",
	}
)

// Perf
var (
	// PerfAgentCall provides latency for agent calls
	PerfAgentCall = metrics.Describe{
		Type: metrics.TypeSample,
		Name: "perf_agent_call",
		Help: "perf_agent_call provides latency for agent calls",
	}

	// PerfLLMCall provides latency for LLM completion calls
	PerfLLMCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_llm_call",
		Help:         "perf_llm_call provides latency for LLM completion calls",
		RequiredTags: []string{"model"},
	}

	// PerfToolCall provides latency for tool calls
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides latency for tool calls",
		RequiredTags: []string{"tool", "origin"},
	}

	// PerfToolSearch provides latency for tool discovery searches
	PerfToolSearch = metrics.Describe{
		Type: metrics.TypeSample,
		Name: "perf_tool_search",
		Help: "perf_tool_search provides latency for tool discovery searches",
	}
)
