package models

// ChatRequest is the body of POST /api/chat. Streaming is the default,
// matching the web client.
type ChatRequest struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
	Stream  *bool  `json:"stream,omitempty"`
}

// WantsStream reports whether the client asked for a streaming response.
// An absent flag means stream.
func (r *ChatRequest) WantsStream() bool {
	return r.Stream == nil || *r.Stream
}

// ChatResponse is the non-streaming chat reply.
type ChatResponse struct {
	Response string `json:"response"`
}
