// internal/chat/models.go
package chat

// TurnRequest is the body of POST /chat.
type TurnRequest struct {
	SessionID    string `json:"sessionId,omitempty"`
	Message      string `json:"message"`
	DocumentText string `json:"documentText,omitempty"`
}

// Block types streamed back to the client, one JSON object per line.
const (
	BlockProgress = "progress"
	BlockMessage  = "message"
	BlockReport   = "report"
	BlockError    = "error"
)

// Block is one progressively rendered chunk of the advisor's reply.
type Block struct {
	Type      string `json:"type"`
	Stage     string `json:"stage,omitempty"`
	Content   string `json:"content,omitempty"`
	Step      string `json:"step"`
	SessionID string `json:"sessionId"`
}

// stageLabels translate internal stage names into what the student sees
// while the consultation runs.
var stageLabels = map[string]string{
	"analyze-intent":    "Reading your request...",
	"find-scholarships": "Searching for scholarships...",
	"score-profile":     "Evaluating your profile...",
	"estimate-finances": "Estimating costs...",
	"synthesize-advice": "Putting your recommendation together...",
}
