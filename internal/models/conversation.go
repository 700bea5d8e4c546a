package models

// Speaker tags for conversation turns.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Conversation type tags carried on every turn result.
const (
	ConversationTypeInitial = "initial_hybrid"
	ConversationTypeChat    = "conversation"
	ConversationTypeError   = "error"
)

// Option type tags.
const (
	OptionTypeFood         = "food"
	OptionTypeConversation = "conversation"
	OptionTypeContinue     = "continue"
	OptionTypeRestart      = "restart"
)

// NextAction values.
const (
	NextActionContinue = "continue"
	NextActionFoodMap  = "food_map"
	NextActionRestart  = "restart"
)

// Turn is one utterance in a session history.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Recommendation is a menu item with a price range in currency units.
// PriceMin <= PriceMax is a convention, not enforced anywhere.
type Recommendation struct {
	FoodName string `json:"food_name"`
	PriceMin int    `json:"price_min"`
	PriceMax int    `json:"price_max"`
}

// Option is a selectable follow-up the client can render.
type Option struct {
	Text   string `json:"text"`
	Action string `json:"action"`
	Value  string `json:"value"`
	Type   string `json:"type"`
}

// TurnResult is the outward result of one conversation turn.
//
// Recommendations (extracted from the generative reply itself) and
// PersonalRecommendations (from the personalization provider) are independent
// channels and must never be merged into one list.
type TurnResult struct {
	Reply                   string           `json:"reply"`
	Recommendations         []Recommendation `json:"recommendations"`
	PersonalRecommendations []Recommendation `json:"personalRecommendations"`
	Options                 []Option         `json:"options"`
	ConversationType        string           `json:"conversationType"`
	EndOfConversation       bool             `json:"isEndOfConversation"`
	NextAction              string           `json:"nextAction"`
}
