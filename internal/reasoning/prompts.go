package reasoning

import (
	"errors"
	"strings"
)

// ErrEmptySequence is returned when a temporal prompt is requested for no actions.
var ErrEmptySequence = errors.New("action sequence is empty")

const singleActionTemplate = `
You are an embodied AI research assistant.

You are given a high-level human action label. Based on common sense,
infer the underlying intent, environment context, and task-level information.

Action categories:
- open_door: the person walks to a door and opens it.
- pick_book: the person picks up a book from a shelf or table.
- pour_water: the person pours water from a kettle/bottle into a cup.
- walk_stop: the person walks and then stops briefly.

Current action label: "{action_label}"

Additional context:
{action_hint}

Return ONLY a valid JSON object with the following keys (ALL must appear):

1. intent (string)
2. next_step (string)
3. explanation (string; 1-3 sentences)
4. environment (object):
   - scene_type (string)
   - key_objects (list of strings)
5. agent_state (string)
6. affordances (list of strings; 3-5 items)
7. constraints (list of strings; 2-4 items)
8. task_goal (string)
9. current_step (string)
10. future_steps (list of strings; 2-4 items)
11. target_objects (list of strings; 2-4 items)

IMPORTANT:
- Output JSON only.
- Do not include markdown code fences.
- Do not include any extra text.
`

const temporalTemplate = `
You are an embodied AI researcher analyzing a sequence of human actions.

Given the following action sequence (in order):
{history}

Analyze the sequence as a single task episode and return a strict JSON object
with the following keys (ALL must appear):

- overall_task (string)
- step_roles (list of strings; one per action in the same order)
- possible_goal (string)
- future_plan (list of 2-4 strings)
- uncertainty_notes (list of 1-3 strings)

Return JSON only. Do not include any extra text.
`

// ActionHints gives scene context for each known action label.
var ActionHints = map[string]string{
	"open_door": "Usually involves approaching a door and opening it. " +
		"Common scenes include rooms, corridors, offices, or classrooms.",
	"pick_book": "Usually involves picking up a book from a shelf or table. " +
		"Common scenes include libraries, study rooms, or offices.",
	"pour_water": "Usually involves pouring liquid from a container into a cup. " +
		"Common scenes include kitchens, pantries, or office break rooms.",
	"walk_stop": "Usually involves walking and then stopping briefly. " +
		"Common scenes include corridors, indoor spaces, sidewalks, or open areas.",
}

// BuildSingleActionPrompt renders the per-action prompt. Unknown labels get
// an empty hint.
func BuildSingleActionPrompt(label string) string {
	return strings.NewReplacer(
		"{action_label}", label,
		"{action_hint}", ActionHints[label],
	).Replace(singleActionTemplate)
}

// BuildTemporalPrompt renders the sequence prompt with labels joined by " -> ".
func BuildTemporalPrompt(labels []string) (string, error) {
	if len(labels) == 0 {
		return "", ErrEmptySequence
	}
	return strings.Replace(temporalTemplate, "{history}", strings.Join(labels, " -> "), 1), nil
}
