package entities

// Usage is the provider's token accounting, when it reports one.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RawReply is the unvalidated text returned by the provider for one prompt.
type RawReply struct {
	Content string
	Model   string
	Usage   *Usage
}
