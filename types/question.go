package types

import "time"

// PreviousContext carries the previous turn of a chat session, when the
// caller supplies one. The core never persists this itself — chat-session
// persistence is an external collaborator (§1).
type PreviousContext struct {
	Question     string       `json:"question"`
	Response     string       `json:"response"`
	Route        Tool         `json:"route"`
	SQLQueryType SQLQueryType `json:"sql_query_type,omitempty"`
	Entities     Entities     `json:"entities"`
}

// Request is a single inbound question, request-scoped and discarded at
// response time (§3 Lifecycle).
type Request struct {
	Content         string           `json:"content"`
	SessionID       string           `json:"session_id,omitempty"`
	PreviousContext *PreviousContext `json:"previous_context,omitempty"`
}

// TableData is the UI side channel attached to SQL-path responses.
type TableData struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Response is returned by Orchestrator.ProcessQuestion.
type Response struct {
	Content            string         `json:"content"`
	Response            string        `json:"response"`
	RouteUsed           Tool           `json:"route_used"`
	ResponseTimeMS      int64          `json:"response_time_ms"`
	SessionID           string         `json:"session_id,omitempty"`
	TableData           *TableData     `json:"table_data,omitempty"`
	IdentifiedEntities  *Entities      `json:"identified_entities,omitempty"`
	Timestamp           time.Time      `json:"timestamp"`
	SQLQueryType        SQLQueryType   `json:"sql_query_type,omitempty"`
}

// RouteResult is what Orchestrator.GetRoute returns: the pipeline stopped
// after routing, used by the UI to preview what the system understood.
type RouteResult struct {
	RouteUsed          Tool     `json:"route_used"`
	SQLQueryType       SQLQueryType `json:"sql_query_type,omitempty"`
	IdentifiedEntities Entities `json:"identified_entities"`
}
