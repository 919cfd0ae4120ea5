package llm

import (
	"encoding/json"

	"clementus360/nudge-agent/types"

	"github.com/openai/openai-go"
)

const defaultSenderName = "A friend"

const systemPrompt = `You are a productivity assistant that classifies whether a user is currently ON_TASK or OFF_TASK based on their active application and behavioral context.

Rules:
- ON_TASK: coding, writing docs, work emails, reading research papers, video calls, Slack/Teams, project management tools, spreadsheets for work
- OFF_TASK: social media (Twitter, Reddit, Instagram, TikTok), shopping, entertainment streaming (YouTube non-tutorial, Netflix), gaming, news browsing during work hours
- AMBIGUOUS signals: YouTube tutorials = ON_TASK; YouTube music/trending = OFF_TASK; news = context-dependent
- Evening/weekend hours (not work hours): lower threshold for OFF_TASK judgment, be more lenient

Respond ONLY with valid JSON in this exact format:
{
  "status": "ON_TASK" | "OFF_TASK",
  "confidence": 0.0-1.0,
  "reasoning": "brief explanation"
}`

// labelled examples shown to the model before the real request
type example struct {
	app       string
	title     string
	focusSec  int
	switches  int
	timeOfDay string
	workHours bool
	reply     string
}

var examples = []example{
	{"VSCode", "main.py – mistralhack", 1800, 1, "10:30", true,
		`{"status": "ON_TASK", "confidence": 0.97, "reasoning": "Active coding session on a project during work hours."}`},
	{"Chrome", "YouTube – Trending", 300, 8, "14:15", true,
		`{"status": "OFF_TASK", "confidence": 0.92, "reasoning": "Browsing trending YouTube during work hours with high context switching."}`},
	{"Chrome", "arXiv: Attention Is All You Need", 720, 2, "11:00", true,
		`{"status": "ON_TASK", "confidence": 0.88, "reasoning": "Reading research paper during work hours with low context switching."}`},
	{"Chrome", "Twitter / X – Home", 600, 5, "15:45", true,
		`{"status": "OFF_TASK", "confidence": 0.90, "reasoning": "Social media browsing during work hours."}`},
	{"Slack", "# engineering", 180, 3, "09:20", true,
		`{"status": "ON_TASK", "confidence": 0.85, "reasoning": "Communicating in work Slack channel during work hours."}`},
	{"Chrome", "Amazon – Men's Running Shoes", 240, 6, "13:10", true,
		`{"status": "OFF_TASK", "confidence": 0.88, "reasoning": "Online shopping during work hours."}`},
	{"Chrome", "YouTube – Python FastAPI Tutorial", 900, 1, "10:00", true,
		`{"status": "ON_TASK", "confidence": 0.82, "reasoning": "Watching a programming tutorial related to tech stack during work hours."}`},
	{"Netflix", "Stranger Things – S4E1", 2400, 0, "21:30", false,
		`{"status": "OFF_TASK", "confidence": 0.70, "reasoning": "Streaming entertainment in the evening, so confidence is reduced."}`},
	{"Notion", "Q1 2025 Project Roadmap", 1500, 2, "14:00", true,
		`{"status": "ON_TASK", "confidence": 0.94, "reasoning": "Working on project planning documentation during work hours."}`},
	{"Chrome", "Reddit – r/programmerhumor", 120, 9, "16:00", true,
		`{"status": "OFF_TASK", "confidence": 0.89, "reasoning": "Browsing Reddit entertainment during work hours with very high context switching."}`},
}

type exampleContext struct {
	FocusDurationSec    int    `json:"focus_duration_sec"`
	AppSwitchesLast5Min int    `json:"app_switches_last_5min"`
	TimeOfDay           string `json:"time_of_day"`
	IsWorkHours         bool   `json:"is_work_hours"`
}

type exampleRequest struct {
	AppName     string         `json:"app_name"`
	WindowTitle string         `json:"window_title"`
	Context     exampleContext `json:"context"`
}

// BuildMessages assembles the system prompt, the few-shot turns and the
// request itself as one chat transcript.
func BuildMessages(req types.ClassifyRequest) ([]openai.ChatCompletionMessageParamUnion, error) {
	if req.SenderName == "" {
		req.SenderName = defaultSenderName
	}
	if req.Context.RecentApps == nil {
		req.Context.RecentApps = []string{}
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2+2*len(examples))
	messages = append(messages, openai.SystemMessage(systemPrompt))

	for _, ex := range examples {
		shot, err := json.Marshal(exampleRequest{
			AppName:     ex.app,
			WindowTitle: ex.title,
			Context: exampleContext{
				FocusDurationSec:    ex.focusSec,
				AppSwitchesLast5Min: ex.switches,
				TimeOfDay:           ex.timeOfDay,
				IsWorkHours:         ex.workHours,
			},
		})
		if err != nil {
			return nil, err
		}
		messages = append(messages, openai.UserMessage(string(shot)), openai.AssistantMessage(ex.reply))
	}

	user, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	messages = append(messages, openai.UserMessage(string(user)))
	return messages, nil
}
