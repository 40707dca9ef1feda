package model

// Dist summarizes a distribution of token counts.
type Dist struct {
	N      int
	Sum    int64
	Median float64
	Mean   float64
	P90    float64
	P99    float64
	Max    int64
}

// TurnStats holds per-field distributions over a source's turns.
type TurnStats struct {
	CacheRead       Dist
	CacheCreate     Dist
	Input           Dist
	Output          Dist
	ReasoningOutput Dist
	Total           Dist
}

// Composition is each additive component's share of total tokens, in percent.
type Composition struct {
	CacheRead   float64
	CacheCreate float64
	Input       float64
	Output      float64
}

// TurnProfile splits turns into tool-use and substantive by output size.
type TurnProfile struct {
	ToolUse        int
	Substantive    int
	ToolUsePct     float64
	SubstantivePct float64
}

// ProjectStats rolls up the sessions of one project.
type ProjectStats struct {
	Project     string
	Sessions    int
	Turns       int
	Model       string
	TotalTokens int64
}

// ModelStats rolls up the turns of one model.
type ModelStats struct {
	Model        string
	Family       Family
	Sessions     int
	Turns        int
	OutputTokens int64
	TotalTokens  int64
	// Share is the percentage of all tokens.
	Share float64
}

// SourceStats holds the aggregate view of one source's turns and sessions.
type SourceStats struct {
	Source   Source
	Sessions int
	Turns    int

	// DateStart and DateEnd are YYYY-MM-DD, or "" when no session has a
	// creation time.
	DateStart string
	DateEnd   string

	TurnStats         TurnStats
	TurnsPerSession   Dist
	TokensPerSession  Dist
	Composition       Composition
	CacheHitRatio     float64
	TurnProfile       TurnProfile
	SubstantiveOutput Dist
	SubagentTurns     int

	// Projects is sorted by project name.
	Projects []ProjectStats
}
