package reasoning

import (
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// StripCodeFences removes a surrounding ``` fence and an optional language
// tag. Text without a leading fence is only trimmed.
func StripCodeFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}

	t = strings.TrimSpace(strings.Trim(t, "`"))
	if nl := strings.IndexByte(t, '\n'); nl >= 0 && isLanguageTag(t[:nl]) {
		return strings.TrimSpace(t[nl+1:])
	}
	if len(t) >= 4 && strings.EqualFold(t[:4], "json") {
		return strings.TrimSpace(t[4:])
	}
	return t
}

func isLanguageTag(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '+' {
			return false
		}
	}
	return true
}

// parseObject accepts only a single JSON object.
func parseObject(text string) (gjson.Result, bool) {
	if !gjson.Valid(text) {
		return gjson.Result{}, false
	}
	r := gjson.Parse(text)
	return r, r.IsObject()
}

// coerceString keeps strings, renders numbers and booleans as written, and
// maps everything else to "".
func coerceString(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number, gjson.True, gjson.False:
		return r.Raw
	default:
		return ""
	}
}

// coerceList reads a list of strings. Non-arrays become empty, nulls are
// dropped and non-string elements keep their JSON text.
func coerceList(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		return out
	}
	r.ForEach(func(_, v gjson.Result) bool {
		switch v.Type {
		case gjson.Null:
		case gjson.String:
			out = append(out, v.Str)
		default:
			out = append(out, strings.TrimSpace(v.Raw))
		}
		return true
	})
	return out
}

func coerceSingle(obj gjson.Result) ActionReasoning {
	out := DefaultActionReasoning()
	out.Intent = coerceString(obj.Get("intent"))
	out.NextStep = coerceString(obj.Get("next_step"))
	out.Explanation = coerceString(obj.Get("explanation"))
	out.AgentState = coerceString(obj.Get("agent_state"))
	out.TaskGoal = coerceString(obj.Get("task_goal"))
	out.CurrentStep = coerceString(obj.Get("current_step"))

	if env := obj.Get("environment"); env.IsObject() {
		out.Environment.SceneType = coerceString(env.Get("scene_type"))
		out.Environment.KeyObjects = coerceList(env.Get("key_objects"))
	}

	out.Affordances = coerceList(obj.Get("affordances"))
	out.Constraints = coerceList(obj.Get("constraints"))
	out.FutureSteps = coerceList(obj.Get("future_steps"))
	out.TargetObjects = coerceList(obj.Get("target_objects"))
	return out
}

func coerceTemporal(obj gjson.Result) TemporalReasoning {
	return TemporalReasoning{
		OverallTask:      coerceString(obj.Get("overall_task")),
		StepRoles:        coerceList(obj.Get("step_roles")),
		PossibleGoal:     coerceString(obj.Get("possible_goal")),
		FuturePlan:       coerceList(obj.Get("future_plan")),
		UncertaintyNotes: coerceList(obj.Get("uncertainty_notes")),
	}
}

// ParseSingle strips fences and coerces the response into the schema without
// backfilling. ok is false when the text was not a JSON object; the sanitized
// text is then kept in Explanation.
func ParseSingle(raw string) (out ActionReasoning, ok bool) {
	text := StripCodeFences(raw)
	obj, ok := parseObject(text)
	if !ok {
		out = DefaultActionReasoning()
		out.Explanation = text
		return out, false
	}
	return coerceSingle(obj), true
}

// ParseTemporal is the temporal counterpart of ParseSingle. Unparseable text
// becomes the single uncertainty note.
func ParseTemporal(raw string) (out TemporalReasoning, ok bool) {
	text := StripCodeFences(raw)
	obj, ok := parseObject(text)
	if !ok {
		out = DefaultTemporalReasoning()
		if text != "" {
			out.UncertaintyNotes = []string{text}
		}
		return out, false
	}
	return coerceTemporal(obj), true
}

// Backfill tops up short list fields with canned entries and truncates long
// ones so every list meets its cardinality bounds. Model entries come first.
func Backfill(in ActionReasoning) ActionReasoning {
	out := in
	out.Affordances = fill(in.Affordances, MinAffordances, MaxAffordances, cannedAffordances)
	out.Constraints = fill(in.Constraints, MinConstraints, MaxConstraints, cannedConstraints)
	out.FutureSteps = fill(in.FutureSteps, MinFutureSteps, MaxFutureSteps, cannedFutureSteps)

	targets := fill(in.TargetObjects, MinTargetObjects, MaxTargetObjects, in.Environment.KeyObjects)
	out.TargetObjects = fill(targets, MinTargetObjects, MaxTargetObjects, cannedTargetObjects)

	out.Environment.KeyObjects = orEmpty(in.Environment.KeyObjects)
	return out
}

// fill appends candidates in order while items is shorter than lo. Additions
// never grow the list past hi; entries already in items are kept as they are.
func fill(items []string, lo, hi int, candidates []string) []string {
	out := make([]string, 0, len(items)+len(candidates))
	out = append(out, items...)
	for _, c := range candidates {
		if len(out) >= lo || len(out) >= hi {
			break
		}
		out = append(out, c)
	}
	return out
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// NormalizeSingle turns any model output into a complete, backfilled
// single-action object. It never fails.
func NormalizeSingle(raw string) ActionReasoning {
	out, _ := ParseSingle(raw)
	return Backfill(out)
}

// NormalizeTemporal turns any model output into a complete temporal object.
func NormalizeTemporal(raw string) TemporalReasoning {
	out, _ := ParseTemporal(raw)
	return out
}
