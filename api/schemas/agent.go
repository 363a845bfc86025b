// api/schemas/agent.go
package schemas

// AgentRequest is the JSON body accepted by the agent endpoint. The query is the
// natural-language task the model is asked to complete by driving a browser.
type AgentRequest struct {
	Query string `json:"query"`
}

// AgentResponse is the JSON body returned by the agent endpoint. Exactly one of
// Answer or Error is populated; a request never yields a partial success.
type AgentResponse struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}
