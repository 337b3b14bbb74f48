package prompts

// System instructions. The executor appends the structured-output hint.
const (
	systemFirstOrder = `You are a principal engineer analysing the consequences of adopting technical concepts, patterns and practices.
You reason about direct (first-order) effects only and you are explicit about uncertainty.`

	systemHigherOrder = `You are a systems thinker tracing how first-order effects cascade into second- and third-order effects.
You name the causal mechanism of every link and you mark discontinuities where behaviour changes past a threshold.`

	systemSynthesis = `You are a technology strategist turning an effect cascade into a decision-ready plan.
You are concrete: every recommendation should be actionable by an engineering team.`

	systemSecondary = `You are a staff engineer drilling into selected effects at implementation level.
You surface hidden risks, missing connections and the concrete steps needed to act.`

	systemTertiary = `You are an SRE lead drilling into selected effects at operational level.
You produce runbooks, failure mode analysis and measurable projections.`
)

const firstOrderTemplate = `SESSION MODE: {{.Mode}}

SEEDS:
{{- if .Seeds.Concepts}}
- Concepts: {{join .Seeds.Concepts}}{{end}}
{{- if .Seeds.Patterns}}
- Patterns: {{join .Seeds.Patterns}}{{end}}
{{- if .Seeds.Practices}}
- Practices: {{join .Seeds.Practices}}{{end}}

OBJECTIVES:
{{range .Objectives}}- {{.}}
{{else}}- (none stated)
{{end}}
CONSTRAINTS:
{{.Constraints}}
{{if .ContextSummary}}
CONTEXT:
{{.ContextSummary}}
{{end}}
{{- if .Hints}}
PERSPECTIVE HINTS:
{{.Hints}}{{end}}
INSTRUCTIONS:
List the direct, first-order effects of adopting the seeds above under these objectives and constraints.
Cover several domains. Use ids "fo-1", "fo-2", ...

Output JSON with this schema:
{
  "effects": [
    {
      "id": "fo-1",
      "title": "short statement of the effect",
      "order": 1,
      "domain": "operations|product|security|organization|cost|performance",
      "likelihood": 0.0-1.0,
      "impact": -5 to 5 (negative = harmful),
      "justification": "why this follows from the seeds",
      "confidence": 0.0-1.0,
      "references": ["seed ids this effect comes from"]
    }
  ],
  "edges": [],
  "leaps": []
}

RULES:
- order must be 1 for every effect
- likelihood and confidence are fractions, never percentages
- Output ONLY valid JSON`

const higherOrderTemplate = `SESSION MODE: {{.Mode}}
{{- if .Guidance}}
MODE GUIDANCE:
{{.Guidance}}
{{- end}}

FIRST-ORDER EFFECTS:
{{range .FirstOrder}}- [{{.ID}}] {{.Title}} ({{.Domain}}, impact {{signed .Impact}})
{{end}}
OBJECTIVES:
{{range .Objectives}}- {{.}}
{{else}}- (none stated)
{{end}}
CONSTRAINTS:
{{.Constraints}}
{{if .Hints}}
PERSPECTIVE HINTS:
{{.Hints}}{{end}}
INSTRUCTIONS:
Trace how the first-order effects cascade. Produce second-order effects (caused by first-order ones) and
third-order effects (caused by second-order ones). Use ids "so-1", "so-2", ... and "to-1", "to-2", ...
Connect every new effect to its cause with an edge. Record discontinuities as leaps.

Output JSON with this schema:
{
  "effects": [
    {
      "id": "so-1",
      "title": "short statement of the effect",
      "order": 2 or 3,
      "domain": "operations|product|security|organization|cost|performance",
      "likelihood": 0.0-1.0,
      "impact": -5 to 5,
      "justification": "causal reasoning",
      "confidence": 0.0-1.0,
      "references": []
    }
  ],
  "edges": [
    {"from": "fo-1", "to": "so-1", "mechanism": "how one causes the other", "confidence": 0.0-1.0, "delay": "optional lag, e.g. 2-4 weeks"}
  ],
  "leaps": [
    {"trigger": "what crosses the threshold", "threshold": "where it is", "result": "what changes", "mechanism": "why", "evidence": [], "confidence": 0.0-1.0}
  ]
}

RULES:
- edges may only reference the first-order ids above or effects you produce
- do not repeat first-order effects
- Output ONLY valid JSON`

const synthesisTemplate = `SESSION MODE: {{.Mode}}

EFFECTS:
{{range .Tiers}}{{.Label}}:
{{range .Nodes}}- [{{.ID}}] {{.Title}} ({{.Domain}}, impact {{signed .Impact}}, likelihood {{frac .Likelihood}})
{{end}}{{end}}
LEAPS:
{{range .Leaps}}- {{.Trigger}} → {{.Result}} ({{frac .Confidence}})
{{else}}- (none)
{{end}}
OBJECTIVES:
{{range .Objectives}}- {{.}}
{{else}}- (none stated)
{{end}}
CONSTRAINTS:
{{.Constraints}}
{{if .Hints}}
PERSPECTIVE HINTS:
{{.Hints}}{{end}}
INSTRUCTIONS:
Synthesize the cascade into a strategy. Weigh risks against opportunities and order the work.

Output JSON with this schema:
{
  "risks": ["..."],
  "opportunities": ["..."],
  "recommendedPractices": ["..."],
  "kpis": ["..."],
  "actionPlan": ["..."],
  "implementationOrder": ["..."],
  "successMetrics": ["..."]
}

RULES:
- every list item is a single sentence
- Output ONLY valid JSON`

const deepDiveTemplate = `DEEP DIVE LEVEL: {{.Level}}
SESSION MODE: {{.Mode}}

SELECTED EFFECTS:
{{range .Selected}}- [{{.ID}}] {{.Title}}
  domain: {{.Domain}}, order: {{.Order}}, impact: {{signed .Impact}}, likelihood: {{frac .Likelihood}}
  justification: {{.Justification}}
{{end}}
CONSTRAINTS:
{{.Constraints}}
{{if .Risks}}
TOP-LEVEL RISKS:
{{range .Risks}}- {{.}}
{{end}}{{end}}
{{- if .Opportunities}}
TOP-LEVEL OPPORTUNITIES:
{{range .Opportunities}}- {{.}}
{{end}}{{end}}
{{- if .PriorFindings}}
PRIOR SECONDARY FINDINGS:
{{.PriorFindings}}
{{end}}
INSTRUCTIONS:
{{if eq .Level "tertiary" -}}
Drill into the selected effects at operational level: how they are run, monitored and recovered in production.
{{- else -}}
Drill into the selected effects at implementation level: what building them really involves and what it hides.
{{- end}}
Produce finer-grained sub-effects. Set parentEffectId on each to the selected effect it refines.
Use ids "{{.IDPrefix}}-1", "{{.IDPrefix}}-2", ...

Output JSON with this schema:
{
  "subEffects": [
    {"id": "{{.IDPrefix}}-1", "parentEffectId": "selected effect id", "title": "...", "order": 1-3, "domain": "operations|product|security|organization|cost|performance", "likelihood": 0.0-1.0, "impact": -5 to 5, "justification": "...", "confidence": 0.0-1.0}
  ],
  "connections": [
    {"from": "id", "to": "id", "mechanism": "...", "confidence": 0.0-1.0, "delay": "optional"}
  ],
  "leaps": [],
  "findings": {{.FindingsSchema}}
}

RULES:
- connections may reference the selected effects or your sub-effects
- Output ONLY valid JSON
{{- if .UserQuestion}}

USER FOCUS (prioritize answering this above everything else):
{{.UserQuestion}}
{{- end}}`

const secondaryFindingsSchema = `{
    "type": "secondary",
    "hiddenRisks": [{"risk": "...", "severity": "low|medium|high", "mitigation": "..."}],
    "crossConnections": [{"from": "id", "to": "id", "relationship": "..."}],
    "implementationSteps": [{"step": "...", "owner": "...", "duration": "..."}],
    "revisedKPIs": [{"name": "...", "target": "...", "rationale": "..."}],
    "openQuestions": ["..."]
  }`

const tertiaryFindingsSchema = `{
    "type": "tertiary",
    "runbook": [{"action": "...", "verification": "...", "rollback": "..."}],
    "toolRecommendations": [{"tool": "...", "purpose": "...", "alternatives": ["..."]}],
    "fmeaEntries": [{"failureMode": "...", "effect": "...", "severity": 1-10, "likelihood": 1-10, "detection": 1-10, "rpn": severity*likelihood*detection}],
    "projections": [{"metric": "...", "baseline": "...", "projected": "...", "horizon": "..."}],
    "mitigationComparison": [{"option": "...", "cost": "...", "effectiveness": "...", "tradeoffs": "..."}]
  }`
