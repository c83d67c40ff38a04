package reasoning

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `  {"a":1}  `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"upper tag", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"inline tag", "```json {\"a\":1}```", `{"a":1}`},
		{"other tag", "```javascript\n{\"a\":1}\n```", `{"a":1}`},
		{"multiline object", "```\n{\n  \"a\": 1\n}\n```", "{\n  \"a\": 1\n}"},
		{"prose", "Sure! here you go", "Sure! here you go"},
		{"empty", "", ""},
		{"only fence", "``````", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// checkSingle asserts the structural guarantees of a normalized object.
func checkSingle(t *testing.T, r ActionReasoning) {
	t.Helper()

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	if len(fields) != 11 {
		t.Errorf("got %d top-level keys, want 11", len(fields))
	}
	for _, k := range []string{"intent", "next_step", "explanation", "agent_state", "task_goal", "current_step"} {
		if _, ok := fields[k].(string); !ok {
			t.Errorf("%s is %T, want string", k, fields[k])
		}
	}
	env, ok := fields["environment"].(map[string]interface{})
	if !ok {
		t.Fatalf("environment is %T", fields["environment"])
	}
	if _, ok := env["scene_type"].(string); !ok {
		t.Errorf("scene_type is %T", env["scene_type"])
	}
	if _, ok := env["key_objects"].([]interface{}); !ok {
		t.Errorf("key_objects is %T", env["key_objects"])
	}

	bounds := []struct {
		key string
		lo  int
	}{
		{"affordances", MinAffordances},
		{"constraints", MinConstraints},
		{"future_steps", MinFutureSteps},
		{"target_objects", MinTargetObjects},
	}
	for _, b := range bounds {
		list, ok := fields[b.key].([]interface{})
		if !ok {
			t.Errorf("%s is %T, want list", b.key, fields[b.key])
			continue
		}
		if len(list) < b.lo {
			t.Errorf("%s has %d items, want at least %d", b.key, len(list), b.lo)
		}
		for i, item := range list {
			if _, ok := item.(string); !ok {
				t.Errorf("%s[%d] is %T", b.key, i, item)
			}
		}
	}
}

func TestNormalizeSingleMalformed(t *testing.T) {
	inputs := map[string]string{
		"empty":           "",
		"whitespace":      "   \n ",
		"truncated":       `{"intent": "open the door", "affordances": ["push"`,
		"prose":           "I think the person is opening a door.",
		"missing keys":    `{}`,
		"unknown keys":    `{"foo": "bar"}`,
		"array":           `["intent", "next_step"]`,
		"number":          `42`,
		"null":            `null`,
		"string":          `"just text"`,
		"wrong types":     `{"intent": 3, "next_step": true, "explanation": null, "environment": "kitchen", "affordances": "grab", "constraints": {"a": 1}, "future_steps": 7, "target_objects": null, "task_goal": [], "current_step": {}}`,
		"env wrong types": `{"environment": {"scene_type": ["x"], "key_objects": "door"}}`,
		"mixed list":      `{"affordances": [1, null, "push", {"k": "v"}, [1, 2], false]}`,
		"too many":        `{"affordances": ["a","b","c","d","e","f","g"], "constraints": ["a","b","c","d","e"], "future_steps": ["a","b","c","d","e"], "target_objects": ["a","b","c","d","e"]}`,
		"fenced":          "```json\n{\"intent\": \"x\"}\n```",
		"fenced garbage":  "```json\nnot json\n```",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			checkSingle(t, NormalizeSingle(input))
		})
	}
}

func TestNormalizeSingleParseFailureKeepsText(t *testing.T) {
	got := NormalizeSingle("```json\nthe model rambled\n```")
	if got.Explanation != "the model rambled" {
		t.Errorf("explanation = %q", got.Explanation)
	}

	got = NormalizeSingle(`[1,2,3]`)
	if got.Explanation != `[1,2,3]` {
		t.Errorf("non-object JSON should be kept as explanation, got %q", got.Explanation)
	}
}

func TestNormalizeSingleWellFormed(t *testing.T) {
	input := `{
		"intent": "leave the room",
		"next_step": "walk through the doorway",
		"explanation": "The person opens a door to exit.",
		"environment": {"scene_type": "office corridor", "key_objects": ["door", "handle"]},
		"agent_state": "standing at the door",
		"affordances": ["push door", "pull handle", "walk through", "close door"],
		"constraints": ["door may be locked", "people behind the door"],
		"task_goal": "exit the room",
		"current_step": "opening the door",
		"future_steps": ["walk through", "close the door"],
		"target_objects": ["door", "handle"]
	}`

	got := NormalizeSingle(input)
	checkSingle(t, got)

	want := []string{"push door", "pull handle", "walk through", "close door"}
	if !reflect.DeepEqual(got.Affordances, want) {
		t.Errorf("affordances = %v, want %v", got.Affordances, want)
	}
	if got.Intent != "leave the room" || got.Environment.SceneType != "office corridor" {
		t.Errorf("strings not preserved: %+v", got)
	}
	if !reflect.DeepEqual(got.TargetObjects, []string{"door", "handle"}) {
		t.Errorf("target objects = %v", got.TargetObjects)
	}
}

func TestParseSingleCoercion(t *testing.T) {
	got, ok := ParseSingle(`{
		"intent": 12.50,
		"next_step": false,
		"explanation": null,
		"agent_state": {"x": 1},
		"environment": {"scene_type": "kitchen", "key_objects": ["cup", null, 3]},
		"affordances": [1, null, "push", {"k": "v"}],
		"constraints": "not a list"
	}`)
	if !ok {
		t.Fatal("expected parse success")
	}

	if got.Intent != "12.50" || got.NextStep != "false" {
		t.Errorf("scalars = %q %q", got.Intent, got.NextStep)
	}
	if got.Explanation != "" || got.AgentState != "" {
		t.Errorf("null/object should coerce to empty: %q %q", got.Explanation, got.AgentState)
	}
	if !reflect.DeepEqual(got.Environment.KeyObjects, []string{"cup", "3"}) {
		t.Errorf("key objects = %v", got.Environment.KeyObjects)
	}
	if !reflect.DeepEqual(got.Affordances, []string{"1", "push", `{"k": "v"}`}) {
		t.Errorf("affordances = %v", got.Affordances)
	}
	if got.Constraints == nil || len(got.Constraints) != 0 {
		t.Errorf("constraints = %#v", got.Constraints)
	}
}

func TestBackfill(t *testing.T) {
	tests := []struct {
		name  string
		in    ActionReasoning
		check func(t *testing.T, out ActionReasoning)
	}{
		{
			name: "empty lists get canned entries",
			in:   DefaultActionReasoning(),
			check: func(t *testing.T, out ActionReasoning) {
				if !reflect.DeepEqual(out.Affordances, cannedAffordances) {
					t.Errorf("affordances = %v", out.Affordances)
				}
				if !reflect.DeepEqual(out.Constraints, cannedConstraints) {
					t.Errorf("constraints = %v", out.Constraints)
				}
				if !reflect.DeepEqual(out.FutureSteps, cannedFutureSteps) {
					t.Errorf("future steps = %v", out.FutureSteps)
				}
				if !reflect.DeepEqual(out.TargetObjects, cannedTargetObjects) {
					t.Errorf("target objects = %v", out.TargetObjects)
				}
			},
		},
		{
			name: "model entries come first",
			in: ActionReasoning{
				Affordances: []string{"pour"},
				Constraints: []string{"hot water"},
			},
			check: func(t *testing.T, out ActionReasoning) {
				want := []string{"pour", cannedAffordances[0], cannedAffordances[1]}
				if !reflect.DeepEqual(out.Affordances, want) {
					t.Errorf("affordances = %v, want %v", out.Affordances, want)
				}
				if !reflect.DeepEqual(out.Constraints, []string{"hot water", cannedConstraints[0]}) {
					t.Errorf("constraints = %v", out.Constraints)
				}
			},
		},
		{
			name: "targets borrow key objects",
			in: ActionReasoning{
				Environment:   Environment{KeyObjects: []string{"kettle", "cup", "table"}},
				TargetObjects: []string{"cup"},
			},
			check: func(t *testing.T, out ActionReasoning) {
				if !reflect.DeepEqual(out.TargetObjects, []string{"cup", "kettle"}) {
					t.Errorf("target objects = %v", out.TargetObjects)
				}
			},
		},
		{
			name: "targets fall back to canned after key objects",
			in: ActionReasoning{
				Environment: Environment{KeyObjects: []string{"shelf"}},
			},
			check: func(t *testing.T, out ActionReasoning) {
				if !reflect.DeepEqual(out.TargetObjects, []string{"shelf", "relevant object"}) {
					t.Errorf("target objects = %v", out.TargetObjects)
				}
			},
		},
		{
			name: "canned entries are appended in fixed order",
			in: ActionReasoning{
				Affordances:   []string{cannedAffordances[0]},
				TargetObjects: []string{"relevant object"},
			},
			check: func(t *testing.T, out ActionReasoning) {
				want := []string{cannedAffordances[0], cannedAffordances[0], cannedAffordances[1]}
				if !reflect.DeepEqual(out.Affordances, want) {
					t.Errorf("affordances = %v, want %v", out.Affordances, want)
				}
				if !reflect.DeepEqual(out.TargetObjects, []string{"relevant object", "relevant object"}) {
					t.Errorf("target objects = %v", out.TargetObjects)
				}
			},
		},
		{
			name: "repeated key objects are borrowed in order",
			in: ActionReasoning{
				Environment: Environment{KeyObjects: []string{"cup", "cup"}},
			},
			check: func(t *testing.T, out ActionReasoning) {
				if !reflect.DeepEqual(out.TargetObjects, []string{"cup", "cup"}) {
					t.Errorf("target objects = %v", out.TargetObjects)
				}
			},
		},
		{
			name: "long model lists are preserved",
			in: ActionReasoning{
				Affordances: []string{"a", "b", "c", "d", "e", "f"},
				FutureSteps: []string{"1", "2", "3", "4", "5"},
			},
			check: func(t *testing.T, out ActionReasoning) {
				if !reflect.DeepEqual(out.Affordances, []string{"a", "b", "c", "d", "e", "f"}) {
					t.Errorf("affordances = %v", out.Affordances)
				}
				if len(out.FutureSteps) != 5 {
					t.Errorf("future steps = %v", out.FutureSteps)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Backfill(tt.in)
			checkSingle(t, out)
			tt.check(t, out)
		})
	}
}

func TestBackfillDoesNotAlias(t *testing.T) {
	in := ActionReasoning{Affordances: make([]string, 1, 10)}
	in.Affordances[0] = "x"
	Backfill(in)
	if len(in.Affordances) != 1 {
		t.Error("input slice was modified")
	}
	if in.Affordances[:2][1] != "" {
		t.Error("input backing array was written")
	}
}

func TestNormalizeTemporal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TemporalReasoning
	}{
		{
			name:  "empty",
			input: "",
			want:  DefaultTemporalReasoning(),
		},
		{
			name:  "not json",
			input: "The person is tidying up.",
			want: TemporalReasoning{
				StepRoles:        []string{},
				FuturePlan:       []string{},
				UncertaintyNotes: []string{"The person is tidying up."},
			},
		},
		{
			name:  "well formed",
			input: "```json\n{\"overall_task\": \"make tea\", \"step_roles\": [\"enter\", \"pour\"], \"possible_goal\": \"drink\", \"future_plan\": [\"sit\", \"drink\"], \"uncertainty_notes\": [\"one view\"]}\n```",
			want: TemporalReasoning{
				OverallTask:      "make tea",
				StepRoles:        []string{"enter", "pour"},
				PossibleGoal:     "drink",
				FuturePlan:       []string{"sit", "drink"},
				UncertaintyNotes: []string{"one view"},
			},
		},
		{
			name:  "wrong types",
			input: `{"overall_task": ["x"], "step_roles": "a", "possible_goal": 1, "future_plan": [null, 2], "uncertainty_notes": null}`,
			want: TemporalReasoning{
				OverallTask:      "",
				StepRoles:        []string{},
				PossibleGoal:     "1",
				FuturePlan:       []string{"2"},
				UncertaintyNotes: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTemporal(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTemporal = %+v, want %+v", got, tt.want)
			}
		})
	}
}
