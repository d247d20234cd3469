package evaluation

import (
	"fmt"
	"strings"
)

// personaVersion is bumped whenever the instruction document changes in a way
// that affects scoring, so divergent results can be traced to a persona
// revision.
const personaVersion = "2.1"

// Framework is one named prompt-engineering pattern in the reference
// taxonomy. Key is the snake_case identifier the model must use in
// framework_mapping; Summary is the one-line definition given to the model.
type Framework struct {
	Key     string
	Name    string
	Summary string
}

// Frameworks returns the fixed reference taxonomy of 24 prompt-engineering
// patterns, in rubric order.
func Frameworks() []Framework {
	return []Framework{
		{"clarifying_interview", "Clarifying Interview", `"You are an expert..." plus layered Socratic questions before answering`},
		{"step_by_step_chain", "Step-by-Step Chain", `"Let's think step-by-step..." with numbered reasoning stages`},
		{"role_task_format", "Role-Task-Format (RTF)", `"You are [ROLE]... Do [TASK]... Respond in [FORMAT]"`},
		{"few_shot_examples", "Few-Shot Examples", "two or more worked input/output pairs before the real task"},
		{"persona_anchoring", "Persona Anchoring", "a stable named persona with expertise, voice, and point of view"},
		{"output_template", "Output Template", "an explicit skeleton the answer must fill in, section by section"},
		{"constraint_listing", "Constraint Listing", "enumerated hard limits: length, banned content, required elements"},
		{"audience_calibration", "Audience Calibration", "names the reader and adjusts depth and vocabulary for them"},
		{"context_packing", "Context Packing", "supplies the background facts the task depends on, inline"},
		{"delimited_inputs", "Delimited Inputs", "user data fenced off from instructions with quotes or markers"},
		{"decomposition_tree", "Decomposition Tree", "splits the task into subtasks and orders their resolution"},
		{"self_critique_loop", "Self-Critique Loop", "asks the model to draft, critique its draft, then revise"},
		{"negative_instructions", "Negative Instructions", `explicit "do not..." rules excluding failure modes`},
		{"scoring_rubric", "Scoring Rubric", "gives graded criteria the output will be judged against"},
		{"socratic_probing", "Socratic Probing", "requires the model to surface missing information as questions"},
		{"comparative_framing", "Comparative Framing", "demands alternatives weighed against each other before a pick"},
		{"iterative_refinement", "Iterative Refinement", "plans multiple passes, each improving the previous output"},
		{"error_escape_hatch", "Error Escape Hatch", "defines what to output when the task cannot be completed"},
		{"tone_directive", "Tone Directive", "pins the register: formal, playful, terse, empathetic"},
		{"length_budgeting", "Length Budgeting", "caps or targets word/paragraph counts per section"},
		{"structured_reasoning", "Structured Reasoning", "separates reasoning from the final answer in distinct blocks"},
		{"source_grounding", "Source Grounding", "restricts claims to supplied sources and demands citations"},
		{"verification_checklist", "Verification Checklist", "ends with checks the model must run before answering"},
		{"fallback_chain", "Fallback Chain", "ordered alternatives when the preferred approach is unavailable"},
	}
}

// scoringCriteria are the five structural dimensions, each scored 0-5.
// overall_score = average x 4, max 20.
var scoringCriteria = []string{"clarity", "role", "context", "constraints", "error_handling"}

// SystemInstruction builds the evaluator persona: the fixed instruction
// document sent to the model as system content. It defines the framework
// taxonomy, the scoring rubric, and the strict JSON output contract.
func SystemInstruction() string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the Kulkan PromptIQ Evaluator (v%s), a senior prompt-engineering analyst.\n\n", personaVersion)

	b.WriteString("## 1. Reference framework library\n\n")
	b.WriteString("Judge the submitted prompt against these patterns. Never mention brand or product names.\n\n")
	for i, f := range Frameworks() {
		fmt.Fprintf(&b, "%d. %s (`%s`) - %s\n", i+1, f.Name, f.Key, f.Summary)
	}

	b.WriteString("\n## 2. Evaluation workflow\n\n")
	b.WriteString("A. Framework Mapping - label every framework above as \"match\", \"partial\", or \"miss\".\n")
	fmt.Fprintf(&b, "B. Structural Scoring - score each of %s from 0 to 5; overall_score = average x 4 (integer, max 20).\n",
		strings.Join(scoringCriteria, ", "))
	b.WriteString("C. Detailed Feedback - three short paragraphs (roughly 70-90 words each) on strengths, weaknesses, and the most relevant frameworks by name.\n")
	b.WriteString("D. Improvements - every impactful fix, 25 words or fewer each, ranked by impact.\n")
	b.WriteString("E. Improved Prompt - a clearly structured multi-section rewrite. Each header on its own line, bullets indented two spaces, ending with an explicit OUTPUT FORMAT block when appropriate. Escape newlines inside the JSON string.\n")

	b.WriteString("\n## 3. Response format\n\n")
	b.WriteString("Return ONLY a valid JSON object with exactly these fields and no surrounding prose:\n\n")
	b.WriteString(`{
  "framework_mapping": { "<framework_key>": "match|partial|miss", ... all 24 keys ... },
  "structural_scoring": { "clarity": 0-5, "role": 0-5, "context": 0-5, "constraints": 0-5, "error_handling": 0-5 },
  "overall_score": 0-20,
  "detailed_feedback": "three paragraphs",
  "improvements": ["ranked", "list"],
  "improved_prompt": "### ROLE\n...\n\n### TASK\n...",
  "hash": "echo the hash if one is supplied, otherwise omit"
}
`)

	b.WriteString("\n## 4. Failure etiquette\n\n")
	b.WriteString("If prompt_to_evaluate is empty or missing, return:\n")
	b.WriteString(`{ "error": "InvalidPrompt", "message": "Input is not a full instruction-style prompt. Submit a longer prompt for evaluation." }` + "\n")

	return b.String()
}

// UserContent renders the user-side message for a submission: the prompt to
// evaluate plus optional metadata and client timestamp lines.
func UserContent(sub Submission, metaJSON string) string {
	var b strings.Builder
	b.WriteString("prompt_to_evaluate: ")
	b.WriteString(strings.TrimSpace(sub.Prompt))
	if metaJSON != "" {
		b.WriteString("\nmeta: ")
		b.WriteString(metaJSON)
	}
	if sub.Timestamp != "" {
		b.WriteString("\ntimestamp: ")
		b.WriteString(sub.Timestamp)
	}
	return b.String()
}
