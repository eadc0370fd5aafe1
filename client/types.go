package client

// Wire types for the coach API. These mirror the server's JSON shapes.

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Score struct {
	Metric   string  `json:"metric"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type Report struct {
	OverallFeedback string   `json:"overallFeedback"`
	Scores          []Score  `json:"scores"`
	Answers         []Answer `json:"answers"`
}

type Session struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Domain         string `json:"domain"`
	Specialization string `json:"specialization"`
	Report         Report `json:"report"`
}
