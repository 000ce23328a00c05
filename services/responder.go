package services

import (
	"fmt"
	"strings"
	"time"

	"indiflow-dashboard-api/models"
)

const (
	userPreviewCount = 5
	TopicHelp        = "help"
)

// HelpMessage answers any question no rule recognizes.
const HelpMessage = `I can help you with information about:

• **Users**: "How many users?" / "Show user stats"
• **Routes**: "Popular routes" / "Route analytics"
• **Traffic**: "Traffic patterns" / "Prediction accuracy"
• **AI Model**: "Training status" / "Model performance"
• **Activity**: "Today's activity" / "Active users"

What would you like to know?`

// Rule pairs a topic predicate with the template that answers it. The
// predicate receives the lower-cased question.
type Rule struct {
	Topic  string
	Match  func(q string) bool
	Render func(snap Snapshot, now time.Time) string
}

// Rules are evaluated in order; the first match answers.
var Rules = []Rule{
	{
		Topic: "users",
		Match: func(q string) bool {
			return strings.Contains(q, "user") && containsAny(q, "count", "how many", "total")
		},
		Render: renderUsers,
	},
	{Topic: "routes", Match: matchAny("route", "popular"), Render: renderRoutes},
	{Topic: "traffic", Match: matchAny("traffic", "pattern"), Render: renderTraffic},
	{Topic: "training", Match: matchAny("training", "model", "ai"), Render: renderTraining},
	{Topic: "today", Match: matchAny("today", "active"), Render: renderToday},
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func matchAny(terms ...string) func(string) bool {
	return func(q string) bool { return containsAny(q, terms...) }
}

// Classify returns the topic of the first matching rule, or TopicHelp.
func Classify(question string) string {
	if r := match(question); r != nil {
		return r.Topic
	}
	return TopicHelp
}

func match(question string) *Rule {
	q := strings.ToLower(question)
	for i := range Rules {
		if Rules[i].Match(q) {
			return &Rules[i]
		}
	}
	return nil
}

// Respond answers question from snap alone; it never fetches.
func Respond(question string, snap Snapshot, now time.Time) string {
	if r := match(question); r != nil {
		return r.Render(snap, now)
	}
	return HelpMessage
}

func renderUsers(snap Snapshot, _ time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**User Statistics**\n\nTotal registered users: %d\nActive today: %d\n\nUser breakdown:",
		snap.Stats.TotalUsers, snap.Stats.ActiveToday)
	for i, u := range snap.Users {
		if i == userPreviewCount {
			break
		}
		fmt.Fprintf(&b, "\n• %s (%s)", u.Name, u.Email)
	}
	if extra := len(snap.Users) - userPreviewCount; extra > 0 {
		fmt.Fprintf(&b, "\n...and %d more", extra)
	}
	return b.String()
}

func renderRoutes(snap Snapshot, _ time.Time) string {
	return fmt.Sprintf("**Route Analytics**\n\nTotal routes tracked: %d\nTotal searches: %d\n\n"+
		"The system is actively learning from user patterns to optimize route suggestions.",
		snap.Stats.TotalRoutes, snap.Stats.TotalSearches)
}

func renderTraffic(snap Snapshot, _ time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Traffic Patterns**\n\nTraining data points: %d\n\n", snap.Stats.TrainingDataCount)
	b.WriteString("The AI model uses this data to predict travel times based on:\n" +
		"• Time of day\n• Day of week\n• Historical traffic levels\n• Route characteristics")
	if len(snap.Training) > 0 {
		acc := ComputeAccuracy(snap.Training)
		b.WriteString("\n\nRecent samples by traffic level:")
		for _, level := range models.TrafficLevels {
			la := acc.ByTraffic[level]
			fmt.Fprintf(&b, "\n• %s: %d (avg error %.1f min)", level, la.Samples, la.MeanAbsErrorMin)
		}
	}
	return b.String()
}

func renderTraining(snap Snapshot, _ time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**AI Model Status**\n\nTraining samples: %d\nModel type: Traffic prediction neural network\n",
		snap.Stats.TrainingDataCount)
	if len(snap.Training) > 0 {
		acc := ComputeAccuracy(snap.Training)
		fmt.Fprintf(&b, "Mean absolute error: %.1f min\nPrediction bias: %+.1f min\n", acc.MeanAbsErrorMin, acc.MeanBiasMin)
	}
	b.WriteString("\nTo improve the model:\n1. Upload more training data (CSV/JSON)\n" +
		"2. Ensure data includes: route, predicted_time, actual_time, traffic_level")
	return b.String()
}

func renderToday(snap Snapshot, now time.Time) string {
	return fmt.Sprintf("**Today's Activity**\n\nActive users today: %d\nNew registrations today: %d\n\n"+
		"The dashboard refreshes automatically to show live data.",
		snap.Stats.ActiveToday, countRegisteredToday(snap, now))
}

func countRegisteredToday(snap Snapshot, now time.Time) int {
	n := 0
	for _, u := range snap.Users {
		if sameDay(u.CreatedAt, now) {
			n++
		}
	}
	return n
}
