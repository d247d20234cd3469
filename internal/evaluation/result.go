package evaluation

// Submission is one prompt evaluation request. LastHash and LastTS are the
// client-echoed fingerprint and timestamp of its previous evaluation, used
// only by the cooperative duplicate guard.
type Submission struct {
	Prompt    string         `json:"prompt"`
	LastHash  string         `json:"last_hash,omitempty"`
	LastTS    string         `json:"last_ts,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Result is the normalized critique returned to the client. The field names
// mirror the JSON contract the evaluator persona demands from the model.
type Result struct {
	FrameworkMapping  map[string]string `json:"framework_mapping"`
	StructuralScoring map[string]int    `json:"structural_scoring"`
	OverallScore      int               `json:"overall_score"`
	DetailedFeedback  string            `json:"detailed_feedback"`
	Improvements      []string          `json:"improvements"`
	ImprovedPrompt    string            `json:"improved_prompt"`
	Hash              string            `json:"hash"`
}
