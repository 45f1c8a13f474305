package chatrequests

// ChatRequest sends one user message. An empty conversation id starts a new
// conversation titled from the message.
type ChatRequest struct {
	ConversationID string   `json:"conversation_id" validate:"omitempty,max=64,printascii"`
	Message        string   `json:"message" binding:"required" validate:"max=32000"`
	Model          string   `json:"model" validate:"omitempty,max=128,printascii"`
	Temperature    *float32 `json:"temperature" binding:"omitempty,min=0,max=2"`
	MaxTokens      int      `json:"max_tokens" binding:"omitempty,min=1,max=32768"`
}
