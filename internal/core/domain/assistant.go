package domain

type Language string

const (
	LanguageEnglish Language = "english"
	LanguageHindi   Language = "hindi"
	LanguageMarathi Language = "marathi"
)

type AssistantRequest struct {
	Message             string             `json:"message"`
	Eligible            bool               `json:"eligibility"`
	Document            *ExtractedDocument `json:"extracted,omitempty"`
	Reason              string             `json:"reason"`
	ConversationHistory string             `json:"conversationHistory,omitempty"`
	MessageCount        int                `json:"messageCount,omitempty"`
	IsInitialMessage    bool               `json:"isInitialMessage,omitempty"`
}

type AssistantReply struct {
	Reply    string   `json:"reply"`
	Language Language `json:"language"`
	Fallback bool     `json:"fallback"`
}
