package prompts

import "github.com/josephgoksu/cascade/internal/session"

// modeGuidance maps each mode to the strategic instruction given to the
// higher-order stage. Every mode in session.Modes() has an entry.
var modeGuidance = map[session.Mode]string{
	session.ModeConsolidate: "Consolidate the first-order effects into the few causal chains that matter most. " +
		"Prefer depth over breadth and merge effects that share a mechanism.",
	session.ModeExplore: "Explore widely. Surface non-obvious effects in domains the first-order pass under-covered, " +
		"and favour plausible surprises over restating the obvious.",
	session.ModeStressTest: "Stress-test the constraints: perturb budget, latency and accuracy targets by a meaningful margin " +
		"and, for each downstream effect, state the before/after delta in the justification.",
	session.ModeRedTeam: "Act as an adversary. Derive exploitation chains from the first-order effects, " +
		"and for each give the blast radius and the cost of mitigating it.",
	session.ModeTemporalSim: "Simulate time. Lay out a week-by-week timeline of when each downstream effect materializes " +
		"and put the expected lag on every edge's delay.",
	session.ModeCostOptimize: "Follow the money. Trace every effect to its cost driver, quantify spend where possible " +
		"and flag effects that compound cost over time.",
	session.ModeScaleOut: "Assume 10x then 100x load. Identify effects that appear or change sign as traffic, data and team size grow, " +
		"and mark the thresholds as leaps.",
	session.ModeComplianceAudit: "Audit against the compliance profile. For each effect name the control it touches, " +
		"the evidence an auditor would ask for and the gap if that evidence is missing.",
	session.ModeMigration: "Frame effects as a migration from the current state. Separate transitional effects from steady-state ones " +
		"and call out points of no return.",
	session.ModeIncidentReplay: "Replay a plausible production incident rooted in the first-order effects. " +
		"Describe detection, escalation and recovery as downstream effects with their delays.",
	session.ModeTeamImpact: "Focus on people. Trace effects on ownership, on-call load, hiring, skills and team boundaries.",
	session.ModePreMortem: "Assume the initiative failed a year from now. Work backwards from the failure " +
		"and derive the effects that most plausibly led there.",
	session.ModeCompareAlternatives: "Compare against the strongest alternative approach. For each effect state whether the alternative " +
		"avoids, shares or worsens it.",
}

// ModeGuidance returns the guidance for mode. Unknown modes get no guidance.
func ModeGuidance(mode session.Mode) string {
	return modeGuidance[mode]
}
